// Package storage provides the engine's durable local state: the offline
// scan queue and the per-(user, store) rate-limit windows. Implementations
// must tolerate absent state (first run) and corrupted state (fall back to
// empty) rather than failing the caller.
package storage

import (
	"context"

	"clockin/internal/models"
)

// QueueStore persists the offline scan queue as an ordered list.
type QueueStore interface {
	LoadQueue(ctx context.Context) ([]models.QueuedScan, error)
	SaveQueue(ctx context.Context, items []models.QueuedScan) error
}

// RateLimitStore persists one sliding rate window per (user, store) key.
type RateLimitStore interface {
	LoadWindow(ctx context.Context, key string) (models.RateLimitWindow, error)
	SaveWindow(ctx context.Context, key string, window models.RateLimitWindow) error
}

// Fixed namespaces for persisted state.
const (
	QueueNamespace     = "clockin:offline_queue"
	RateLimitNamespace = "clockin:rate_limit"
)
