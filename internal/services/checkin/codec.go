package checkin

import (
	"encoding/json"
	"time"

	"clockin/internal/models"
)

// MaxPayloadAge is the default freshness window for scanned payloads.
// Anything older never reaches the network.
const MaxPayloadAge = 30 * time.Second

// ParsePayload decodes raw scanned text into a ScanPayload and enforces
// the default freshness window. It distinguishes a broken QR
// (ErrMalformedPayload) from a stale one (ErrPayloadExpired) so callers
// can surface "rescan" versus "this QR is broken".
func ParsePayload(raw string) (models.ScanPayload, error) {
	return ParsePayloadWithin(raw, MaxPayloadAge)
}

// ParsePayloadWithin enforces a caller-supplied freshness window instead
// of the default.
func ParsePayloadWithin(raw string, maxAge time.Duration) (models.ScanPayload, error) {
	return parsePayloadAt(raw, time.Now(), maxAge)
}

func parsePayloadAt(raw string, now time.Time, maxAge time.Duration) (models.ScanPayload, error) {
	if maxAge <= 0 {
		maxAge = MaxPayloadAge
	}
	var payload models.ScanPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return models.ScanPayload{}, ErrMalformedPayload
	}

	if payload.StoreID == "" || payload.Token == "" || payload.Timestamp == 0 {
		return models.ScanPayload{}, ErrMalformedPayload
	}

	if payload.Age(now) > maxAge {
		return models.ScanPayload{}, ErrPayloadExpired
	}

	return payload, nil
}
