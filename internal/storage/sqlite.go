package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"clockin/internal/models"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteStore is a file-backed store for the offline queue and rate-limit
// windows. A single namespaced key/value table keeps the persisted format
// simple; values are versioned JSON blobs.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (and initializes if needed) the local database file.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS local_state (
		namespace TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (namespace, key)
	);
	`
	_, err := db.Exec(query)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// queueEnvelope versions the persisted queue blob.
type queueEnvelope struct {
	Version int                 `json:"version"`
	Items   []models.QueuedScan `json:"items"`
}

// LoadQueue returns the persisted queue, or an empty queue when the state
// is absent or unreadable.
func (s *SQLiteStore) LoadQueue(ctx context.Context) ([]models.QueuedScan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.get(ctx, QueueNamespace, "items")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var env queueEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("corrupted offline queue state, starting empty: %v", err)
		return nil, nil
	}
	return env.Items, nil
}

// SaveQueue replaces the persisted queue.
func (s *SQLiteStore) SaveQueue(ctx context.Context, items []models.QueuedScan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(queueEnvelope{Version: models.CurrentSchemaVersion, Items: items})
	if err != nil {
		return err
	}
	return s.put(ctx, QueueNamespace, "items", raw)
}

// LoadWindow returns the rate window for a key, empty when absent or corrupt.
func (s *SQLiteStore) LoadWindow(ctx context.Context, key string) (models.RateLimitWindow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	empty := models.RateLimitWindow{Version: models.CurrentSchemaVersion}
	raw, err := s.get(ctx, RateLimitNamespace, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return empty, nil
		}
		return empty, err
	}

	var window models.RateLimitWindow
	if err := json.Unmarshal(raw, &window); err != nil {
		log.Printf("corrupted rate window for %s, starting empty: %v", key, err)
		return empty, nil
	}
	return window, nil
}

// SaveWindow persists the rate window for a key.
func (s *SQLiteStore) SaveWindow(ctx context.Context, key string, window models.RateLimitWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	window.Version = models.CurrentSchemaVersion
	raw, err := json.Marshal(window)
	if err != nil {
		return err
	}
	return s.put(ctx, RateLimitNamespace, key, raw)
}

func (s *SQLiteStore) get(ctx context.Context, namespace, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM local_state WHERE namespace = ? AND key = ?`,
		namespace, key).Scan(&value)
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (s *SQLiteStore) put(ctx context.Context, namespace, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_state (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		namespace, key, string(value), time.Now().UTC())
	return err
}
