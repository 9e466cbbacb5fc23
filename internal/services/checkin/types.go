package checkin

import (
	"time"

	"clockin/internal/retry"
)

// Config holds the service tunables. Zero values fall back to the
// protocol defaults.
type Config struct {
	RetryAttempts  int
	RetryBaseDelay time.Duration
	AttemptTimeout time.Duration
	MetricsMaxAge  time.Duration
	DeviceInfo     string
	Hasher         Hasher
}

// DefaultMetricsMaxAge bounds how long per-scan telemetry is retained.
const DefaultMetricsMaxAge = time.Hour

func (c Config) retryOptions() retry.Options {
	return retry.Options{
		Attempts:       c.RetryAttempts,
		BaseDelay:      c.RetryBaseDelay,
		AttemptTimeout: c.AttemptTimeout,
	}
}

// Identifier types accepted by the backend's token validation.
const (
	IdentifierTypeUser     = "user"
	IdentifierTypeEmployee = "employee"
)

// Scan log results.
const (
	scanResultSuccess          = "success"
	scanResultFailure          = "failure"
	scanResultGeofenceRejected = "geofence_rejected"
)
