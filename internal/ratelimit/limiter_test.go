package ratelimit

import (
	"context"
	"testing"
	"time"

	"clockin/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_CapAndReset(t *testing.T) {
	ctx := context.Background()
	limiter := New(storage.NewMemoryStore(), time.Minute, 10)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := base
	limiter.now = func() time.Time { return now }

	// Exactly 10 scans inside the window are allowed.
	for i := 0; i < 10; i++ {
		now = base.Add(time.Duration(i) * time.Second)
		allowed, err := limiter.CheckAndRecord(ctx, "u1", "S1")
		require.NoError(t, err)
		require.True(t, allowed, "scan %d should be allowed", i+1)
	}

	// The 11th is blocked.
	now = base.Add(10 * time.Second)
	allowed, err := limiter.CheckAndRecord(ctx, "u1", "S1")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Blocked attempts are not recorded, so the lockout is not extended:
	// once the original window elapses, scanning works again.
	now = base.Add(9*time.Second + time.Minute + time.Millisecond)
	allowed, err = limiter.CheckAndRecord(ctx, "u1", "S1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLimiter_PairsAreIndependent(t *testing.T) {
	ctx := context.Background()
	limiter := New(storage.NewMemoryStore(), time.Minute, 1)

	allowed, err := limiter.CheckAndRecord(ctx, "u1", "S1")
	require.NoError(t, err)
	require.True(t, allowed)

	// Same user, same store: blocked.
	allowed, err = limiter.CheckAndRecord(ctx, "u1", "S1")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Different store or different user: unaffected.
	allowed, err = limiter.CheckAndRecord(ctx, "u1", "S2")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.CheckAndRecord(ctx, "u2", "S1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLimiter_DropsStaleEntriesOnRead(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	limiter := New(store, time.Minute, 10)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := base
	limiter.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		allowed, err := limiter.CheckAndRecord(ctx, "u1", "S1")
		require.NoError(t, err)
		require.True(t, allowed)
	}

	now = base.Add(2 * time.Minute)
	allowed, err := limiter.CheckAndRecord(ctx, "u1", "S1")
	require.NoError(t, err)
	require.True(t, allowed)

	// Only the fresh stamp remains persisted.
	window, err := store.LoadWindow(ctx, windowKey("u1", "S1"))
	require.NoError(t, err)
	assert.Len(t, window.Stamps, 1)
}

func TestLimiter_ColonInIDsDoesNotAliasWindows(t *testing.T) {
	ctx := context.Background()
	limiter := New(storage.NewMemoryStore(), time.Minute, 1)

	// ("a:b", "c") and ("a", "b:c") would naively concatenate to the
	// same key; they must count against separate windows.
	allowed, err := limiter.CheckAndRecord(ctx, "a:b", "c")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.CheckAndRecord(ctx, "a", "b:c")
	require.NoError(t, err)
	assert.True(t, allowed)

	// Each pair is still capped on its own window.
	allowed, err = limiter.CheckAndRecord(ctx, "a:b", "c")
	require.NoError(t, err)
	assert.False(t, allowed)
}
