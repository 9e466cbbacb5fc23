package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ValidateToken(t *testing.T) {
	var gotAuth string
	var gotReq ValidationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/scan/validate", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(ValidationResponse{IsValid: true, TokenID: "tok-1", Message: "ok"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")
	resp, err := client.ValidateToken(context.Background(), ValidationRequest{
		TokenDigest:    "abc123",
		StoreID:        "S1",
		Identifier:     "u1",
		IdentifierType: "user",
	})

	require.NoError(t, err)
	assert.True(t, resp.IsValid)
	assert.False(t, resp.RateLimited)
	assert.Equal(t, "tok-1", resp.TokenID)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "abc123", gotReq.TokenDigest)
	assert.Equal(t, "user", gotReq.IdentifierType)
}

func TestClient_ProcessCheckIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/scan/checkin", r.URL.Path)
		var req CheckInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotNil(t, req.Latitude)
		json.NewEncoder(w).Encode(CheckInResponse{Success: true, ActionType: "checkin", RecordID: "r-9"})
	}))
	defer srv.Close()

	lat, lng := 13.75, 100.5
	client := NewClient(srv.URL, "")
	resp, err := client.ProcessCheckIn(context.Background(), CheckInRequest{
		EmployeeID:  "e1",
		StoreID:     "S1",
		TokenDigest: "d",
		Latitude:    &lat,
		Longitude:   &lng,
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "checkin", resp.ActionType)
	assert.Equal(t, "r-9", resp.RecordID)
}

func TestClient_CheckGeofence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(GeofenceResponse{WithinGeofence: false})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	within, err := client.CheckGeofence(context.Background(), "S1", 0, 0)
	require.NoError(t, err)
	assert.False(t, within)
}

func TestClient_ErrorStatusSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad digest"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.ValidateToken(context.Background(), ValidationRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	latency, err := client.Ping(context.Background())
	require.NoError(t, err)
	assert.Greater(t, latency, time.Duration(0))
}

func TestClient_PingUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.Ping(context.Background())
	assert.Error(t, err)
}
