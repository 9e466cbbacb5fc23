// Package gateway is the HTTP client for the backend's scan capabilities:
// token validation, check-in processing, geofence checks and scan logging.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"clockin/internal/models"
)

// Request/response shapes on the wire. Field names follow the backend API.

type ValidationRequest struct {
	TokenDigest    string `json:"token_digest"`
	StoreID        string `json:"store_id"`
	Identifier     string `json:"identifier"`
	IdentifierType string `json:"identifier_type"`
}

type ValidationResponse struct {
	IsValid     bool   `json:"is_valid"`
	RateLimited bool   `json:"rate_limited"`
	TokenID     string `json:"token_id"`
	Message     string `json:"message"`
}

type CheckInRequest struct {
	EmployeeID  string   `json:"employee_id"`
	StoreID     string   `json:"store_id"`
	TokenDigest string   `json:"token_digest"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Accuracy    *float64 `json:"accuracy,omitempty"`
}

type CheckInResponse struct {
	Success    bool   `json:"success"`
	ActionType string `json:"action_type"`
	RecordID   string `json:"record_id"`
	Message    string `json:"message"`
}

type GeofenceRequest struct {
	StoreID   string  `json:"store_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type GeofenceResponse struct {
	WithinGeofence bool `json:"within_geofence"`
}

type ScanLogEntry struct {
	StoreID        string                 `json:"store_id"`
	EmployeeID     string                 `json:"employee_id"`
	TokenDigest    string                 `json:"token_digest"`
	Result         string                 `json:"result"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	ResponseTimeMs int64                  `json:"response_time_ms"`
	Location       *models.LocationSample `json:"location,omitempty"`
	DeviceInfo     string                 `json:"device_info"`
}

// Client talks JSON over HTTP to the backend. The per-call deadline is
// carried by the caller's context (the retry layer sets it); the embedded
// http.Client timeout is only a backstop.
type Client struct {
	baseURL  string
	apiToken string
	http     *http.Client
}

// NewClient creates a gateway client for the given base URL.
func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		baseURL:  baseURL,
		apiToken: apiToken,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// ValidateToken asks the backend whether a token digest is valid for a store.
func (c *Client) ValidateToken(ctx context.Context, req ValidationRequest) (*ValidationResponse, error) {
	var resp ValidationResponse
	if err := c.post(ctx, "/api/scan/validate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProcessCheckIn submits a check-in/out attempt. The backend decides the
// checkin-vs-checkout toggle from the employee's attendance state.
func (c *Client) ProcessCheckIn(ctx context.Context, req CheckInRequest) (*CheckInResponse, error) {
	var resp CheckInResponse
	if err := c.post(ctx, "/api/scan/checkin", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckGeofence reports whether a location lies within the store's radius.
func (c *Client) CheckGeofence(ctx context.Context, storeID string, lat, lng float64) (bool, error) {
	var resp GeofenceResponse
	req := GeofenceRequest{StoreID: storeID, Latitude: lat, Longitude: lng}
	if err := c.post(ctx, "/api/scan/geofence", req, &resp); err != nil {
		return false, err
	}
	return resp.WithinGeofence, nil
}

// LogScan ships one scan analytics record. Best effort; callers swallow
// the error.
func (c *Client) LogScan(ctx context.Context, entry ScanLogEntry) error {
	return c.post(ctx, "/api/scan/log", entry, nil)
}

// Ping measures one round trip to the health endpoint.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("health probe returned %d", resp.StatusCode)
	}
	return time.Since(start), nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(data))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
