// Package ratelimit caps scan attempts per (user, store) pair with a
// persisted sliding window, so excessive scans are blocked before any
// network call. This is a courtesy fast path only; the authoritative limit
// is enforced by the backend.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"clockin/internal/storage"
)

// Defaults: at most 10 scans per 60 seconds for one (user, store) pair.
const (
	DefaultWindow   = 60 * time.Second
	DefaultMaxScans = 10
)

// Limiter is a sliding-window scan counter backed by a RateLimitStore.
type Limiter struct {
	store    storage.RateLimitStore
	window   time.Duration
	maxScans int
	now      func() time.Time
}

// New creates a limiter. Zero window/maxScans fall back to the defaults.
func New(store storage.RateLimitStore, window time.Duration, maxScans int) *Limiter {
	if store == nil {
		panic("rate limit store is required")
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if maxScans <= 0 {
		maxScans = DefaultMaxScans
	}
	return &Limiter{
		store:    store,
		window:   window,
		maxScans: maxScans,
		now:      time.Now,
	}
}

// CheckAndRecord reports whether a scan is allowed for the pair right now.
// Stale entries are dropped on read. A blocked attempt is not recorded, so
// hammering the scanner does not extend the lockout.
func (l *Limiter) CheckAndRecord(ctx context.Context, userID, storeID string) (bool, error) {
	key := windowKey(userID, storeID)
	window, err := l.store.LoadWindow(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load rate window: %w", err)
	}

	now := l.now()
	cutoff := now.Add(-l.window).UnixMilli()
	fresh := window.Stamps[:0]
	for _, stamp := range window.Stamps {
		if stamp > cutoff {
			fresh = append(fresh, stamp)
		}
	}
	window.Stamps = fresh

	if len(window.Stamps) >= l.maxScans {
		return false, nil
	}

	window.Stamps = append(window.Stamps, now.UnixMilli())
	if err := l.store.SaveWindow(ctx, key, window); err != nil {
		return false, fmt.Errorf("save rate window: %w", err)
	}
	return true, nil
}

// windowKey joins the pair with a unit separator so IDs containing ":"
// cannot alias another pair's window.
func windowKey(userID, storeID string) string {
	return userID + "\x1f" + storeID
}
