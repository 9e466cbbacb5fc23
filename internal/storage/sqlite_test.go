package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"clockin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "clockin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_Queue(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("empty on first run", func(t *testing.T) {
		items, err := store.LoadQueue(ctx)
		assert.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("round trip preserves order and fields", func(t *testing.T) {
		queued := []models.QueuedScan{
			{
				ID:        "S1-1700000000000",
				Operation: models.QueueOpValidate,
				Payload:   models.ScanPayload{StoreID: "S1", StoreCode: "MAIN", Token: "t1", Timestamp: 1700000000000},
				UserID:    "u1",
				QueuedAt:  1700000000000,
			},
			{
				ID:         "S2-1700000001000",
				Operation:  models.QueueOpCheckIn,
				Payload:    models.ScanPayload{StoreID: "S2", Token: "t2", Timestamp: 1700000001000},
				Location:   &models.LocationSample{Latitude: 13.7, Longitude: 100.5, Accuracy: 8},
				EmployeeID: "e7",
				QueuedAt:   1700000001000,
				RetryCount: 2,
			},
		}
		require.NoError(t, store.SaveQueue(ctx, queued))

		loaded, err := store.LoadQueue(ctx)
		require.NoError(t, err)
		assert.Equal(t, queued, loaded)
	})

	t.Run("survives reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "persist.db")
		first, err := NewSQLiteStore(path)
		require.NoError(t, err)
		item := models.QueuedScan{ID: "S1-1", Operation: models.QueueOpValidate, QueuedAt: time.Now().UnixMilli()}
		require.NoError(t, first.SaveQueue(ctx, []models.QueuedScan{item}))
		require.NoError(t, first.Close())

		second, err := NewSQLiteStore(path)
		require.NoError(t, err)
		defer second.Close()
		loaded, err := second.LoadQueue(ctx)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, "S1-1", loaded[0].ID)
	})

	t.Run("corrupted blob falls back to empty", func(t *testing.T) {
		require.NoError(t, store.put(ctx, QueueNamespace, "items", []byte("{not json")))
		items, err := store.LoadQueue(ctx)
		assert.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestSQLiteStore_RateWindow(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("empty window for unknown key", func(t *testing.T) {
		window, err := store.LoadWindow(ctx, "u1:S1")
		assert.NoError(t, err)
		assert.Empty(t, window.Stamps)
	})

	t.Run("round trip", func(t *testing.T) {
		want := models.RateLimitWindow{Stamps: []int64{1, 2, 3}}
		require.NoError(t, store.SaveWindow(ctx, "u1:S1", want))

		got, err := store.LoadWindow(ctx, "u1:S1")
		require.NoError(t, err)
		assert.Equal(t, want.Stamps, got.Stamps)
		assert.Equal(t, models.CurrentSchemaVersion, got.Version)
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, store.SaveWindow(ctx, "u2:S1", models.RateLimitWindow{Stamps: []int64{9}}))
		got, err := store.LoadWindow(ctx, "u1:S1")
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3}, got.Stamps)
	})
}
