package checkin

import "errors"

// Service errors
var (
	// ErrMalformedPayload marks a scan whose payload is missing required
	// fields; the QR itself is broken and rescanning the same code is
	// pointless.
	ErrMalformedPayload = errors.New("malformed scan payload")

	// ErrPayloadExpired marks a payload older than the freshness window;
	// the caller should prompt for a fresh code.
	ErrPayloadExpired = errors.New("scan payload expired")

	// ErrScanInFlight is returned when a second scan arrives while one is
	// still being processed.
	ErrScanInFlight = errors.New("a scan is already being processed")
)
