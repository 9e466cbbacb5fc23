package checkin

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-2 * time.Second).UnixMilli()

	t.Run("valid payload", func(t *testing.T) {
		raw := fmt.Sprintf(`{"storeId":"S1","storeCode":"MAIN","token":"T1","timestamp":%d}`, fresh)
		payload, err := parsePayloadAt(raw, now, MaxPayloadAge)
		require.NoError(t, err)
		assert.Equal(t, "S1", payload.StoreID)
		assert.Equal(t, "MAIN", payload.StoreCode)
		assert.Equal(t, "T1", payload.Token)
		assert.Equal(t, fresh, payload.Timestamp)
	})

	t.Run("store code is optional", func(t *testing.T) {
		raw := fmt.Sprintf(`{"storeId":"S1","token":"T1","timestamp":%d}`, fresh)
		_, err := parsePayloadAt(raw, now, MaxPayloadAge)
		assert.NoError(t, err)
	})

	t.Run("malformed payloads", func(t *testing.T) {
		tests := []struct {
			name string
			raw  string
		}{
			{name: "not json", raw: "totally-not-json"},
			{name: "empty string", raw: ""},
			{name: "missing storeId", raw: fmt.Sprintf(`{"token":"T1","timestamp":%d}`, fresh)},
			{name: "missing token", raw: fmt.Sprintf(`{"storeId":"S1","timestamp":%d}`, fresh)},
			{name: "missing timestamp", raw: `{"storeId":"S1","token":"T1"}`},
			{name: "wrong field types", raw: `{"storeId":1,"token":2,"timestamp":"x"}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := parsePayloadAt(tt.raw, now, MaxPayloadAge)
				assert.ErrorIs(t, err, ErrMalformedPayload)
			})
		}
	})

	t.Run("expired regardless of field validity", func(t *testing.T) {
		stale := now.Add(-31 * time.Second).UnixMilli()
		raw := fmt.Sprintf(`{"storeId":"S1","storeCode":"MAIN","token":"T1","timestamp":%d}`, stale)
		_, err := parsePayloadAt(raw, now, MaxPayloadAge)
		assert.ErrorIs(t, err, ErrPayloadExpired)
	})

	t.Run("exactly at the freshness boundary is allowed", func(t *testing.T) {
		edge := now.Add(-MaxPayloadAge).UnixMilli()
		raw := fmt.Sprintf(`{"storeId":"S1","token":"T1","timestamp":%d}`, edge)
		_, err := parsePayloadAt(raw, now, MaxPayloadAge)
		assert.NoError(t, err)
	})

	t.Run("configured window overrides the default", func(t *testing.T) {
		stamp := now.Add(-45 * time.Second).UnixMilli()
		raw := fmt.Sprintf(`{"storeId":"S1","token":"T1","timestamp":%d}`, stamp)

		// Too old for the default window, fine for a wider one.
		_, err := parsePayloadAt(raw, now, MaxPayloadAge)
		assert.ErrorIs(t, err, ErrPayloadExpired)
		_, err = parsePayloadAt(raw, now, time.Minute)
		assert.NoError(t, err)

		// And a tighter window rejects what the default would accept.
		fresher := fmt.Sprintf(`{"storeId":"S1","token":"T1","timestamp":%d}`, now.Add(-10*time.Second).UnixMilli())
		_, err = parsePayloadAt(fresher, now, 5*time.Second)
		assert.ErrorIs(t, err, ErrPayloadExpired)
	})

	t.Run("expired is distinct from malformed", func(t *testing.T) {
		stale := now.Add(-time.Minute).UnixMilli()
		raw := fmt.Sprintf(`{"storeId":"S1","token":"T1","timestamp":%d}`, stale)
		_, err := parsePayloadAt(raw, now, MaxPayloadAge)
		assert.False(t, errors.Is(err, ErrMalformedPayload))
	})
}
