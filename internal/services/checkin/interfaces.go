package checkin

import (
	"context"

	"clockin/internal/gateway"
	"clockin/internal/models"
	"clockin/internal/queue"
)

// Gateway is the backend surface the engine calls.
type Gateway interface {
	ValidateToken(ctx context.Context, req gateway.ValidationRequest) (*gateway.ValidationResponse, error)
	ProcessCheckIn(ctx context.Context, req gateway.CheckInRequest) (*gateway.CheckInResponse, error)
	LogScan(ctx context.Context, entry gateway.ScanLogEntry) error
}

// RateLimiter is the local courtesy limiter consulted before any network call.
type RateLimiter interface {
	CheckAndRecord(ctx context.Context, userID, storeID string) (bool, error)
}

// GeofenceValidator confirms a location lies within a store's radius.
type GeofenceValidator interface {
	IsWithinGeofence(ctx context.Context, storeID string, loc models.LocationSample) bool
}

// OfflineQueue captures scans that cannot be delivered.
type OfflineQueue interface {
	Enqueue(ctx context.Context, item models.QueuedScan) error
	SetReplayFunc(fn queue.ReplayFunc)
	Drain(ctx context.Context)
}

// NetworkMonitor reports connectivity state.
type NetworkMonitor interface {
	IsOnline() bool
	ConnectionSpeed() string
	OnOnline(fn func())
}

// Hasher converts a one-time token into the digest used for lookups and
// audit logs.
type Hasher func(token string) string
