package storage

import (
	"context"
	"sync"

	"clockin/internal/models"
)

// MemoryStore keeps state in process memory. Used in tests and as a
// last-resort fallback when no durable backend can be opened.
type MemoryStore struct {
	mu      sync.Mutex
	queue   []models.QueuedScan
	windows map[string]models.RateLimitWindow
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]models.RateLimitWindow)}
}

func (m *MemoryStore) LoadQueue(_ context.Context) ([]models.QueuedScan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.QueuedScan, len(m.queue))
	copy(out, m.queue)
	return out, nil
}

func (m *MemoryStore) SaveQueue(_ context.Context, items []models.QueuedScan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = make([]models.QueuedScan, len(items))
	copy(m.queue, items)
	return nil
}

func (m *MemoryStore) LoadWindow(_ context.Context, key string) (models.RateLimitWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.windows[key]; ok {
		return w, nil
	}
	return models.RateLimitWindow{Version: models.CurrentSchemaVersion}, nil
}

func (m *MemoryStore) SaveWindow(_ context.Context, key string, window models.RateLimitWindow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows[key] = window
	return nil
}
