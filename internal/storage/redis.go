package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"clockin/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the engine's local state with Redis. Intended for kiosk
// fleets where several scanner devices share one queue and one set of rate
// windows; a single device should prefer SQLiteStore.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// LoadQueue returns the shared queue, empty when absent or corrupt.
func (r *RedisStore) LoadQueue(ctx context.Context) ([]models.QueuedScan, error) {
	val, err := r.client.Get(ctx, QueueNamespace).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var env queueEnvelope
	if err := json.Unmarshal([]byte(val), &env); err != nil {
		log.Printf("corrupted offline queue state, starting empty: %v", err)
		return nil, nil
	}
	return env.Items, nil
}

// SaveQueue replaces the shared queue.
func (r *RedisStore) SaveQueue(ctx context.Context, items []models.QueuedScan) error {
	raw, err := json.Marshal(queueEnvelope{Version: models.CurrentSchemaVersion, Items: items})
	if err != nil {
		return err
	}
	return r.client.Set(ctx, QueueNamespace, raw, 0).Err()
}

// LoadWindow returns the rate window for a key, empty when absent or corrupt.
func (r *RedisStore) LoadWindow(ctx context.Context, key string) (models.RateLimitWindow, error) {
	empty := models.RateLimitWindow{Version: models.CurrentSchemaVersion}
	val, err := r.client.Get(ctx, RateLimitNamespace+":"+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return empty, nil
		}
		return empty, err
	}

	var window models.RateLimitWindow
	if err := json.Unmarshal([]byte(val), &window); err != nil {
		log.Printf("corrupted rate window for %s, starting empty: %v", key, err)
		return empty, nil
	}
	return window, nil
}

// SaveWindow persists the rate window for a key.
func (r *RedisStore) SaveWindow(ctx context.Context, key string, window models.RateLimitWindow) error {
	window.Version = models.CurrentSchemaVersion
	raw, err := json.Marshal(window)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, RateLimitNamespace+":"+key, raw, 0).Err()
}
