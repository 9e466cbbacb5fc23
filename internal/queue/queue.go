// Package queue is the durable offline scan queue: a persisted FIFO of
// scans that could not be delivered, replayed when connectivity returns.
package queue

import (
	"context"
	"log"
	"sync"
	"time"

	"clockin/internal/models"
	"clockin/internal/storage"
)

// Defaults: an item is dropped after 3 failed replays or 24 hours of age.
const (
	DefaultMaxRetries = 3
	DefaultMaxAge     = 24 * time.Hour
)

// ReplayFunc delivers a single queued scan. A nil error removes the item.
type ReplayFunc func(ctx context.Context, item models.QueuedScan) error

// Queue is loaded eagerly from its store at construction so pending items
// survive a killed process. Enqueue never touches the network.
type Queue struct {
	store      storage.QueueStore
	maxRetries int
	maxAge     time.Duration
	now        func() time.Time

	mu     sync.Mutex
	items  []models.QueuedScan
	replay ReplayFunc
}

// New creates a queue over the given store, loading any persisted items.
func New(store storage.QueueStore, maxRetries int, maxAge time.Duration) (*Queue, error) {
	if store == nil {
		panic("queue store is required")
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	items, err := store.LoadQueue(context.Background())
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		log.Printf("offline queue: resumed with %d pending scan(s)", len(items))
	}

	return &Queue{
		store:      store,
		maxRetries: maxRetries,
		maxAge:     maxAge,
		now:        time.Now,
		items:      items,
	}, nil
}

// SetReplayFunc registers the delivery function used by Drain.
func (q *Queue) SetReplayFunc(fn ReplayFunc) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.replay = fn
}

// Len reports the number of pending items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Enqueue appends an item and persists the queue. It always succeeds
// locally; a persistence error is returned but the item is still held in
// memory so the scan is not lost while the process lives.
func (q *Queue) Enqueue(ctx context.Context, item models.QueuedScan) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if item.ID == "" {
		item.ID = models.QueuedScanID(item.Payload.StoreID, q.now())
	}
	if item.QueuedAt == 0 {
		item.QueuedAt = q.now().UnixMilli()
	}
	q.items = append(q.items, item)
	return q.store.SaveQueue(ctx, q.items)
}

// Drain replays pending items in FIFO order. It iterates a snapshot so
// items enqueued mid-drain are not double-processed. Items older than the
// age ceiling are dropped without a replay attempt; items that fail replay
// are requeued with retryCount+1 until the retry cap, then dropped.
func (q *Queue) Drain(ctx context.Context) {
	q.mu.Lock()
	replay := q.replay
	snapshot := q.items
	q.items = nil
	q.mu.Unlock()

	if replay == nil {
		// Nothing can be delivered; put the snapshot back untouched.
		q.requeue(ctx, snapshot)
		return
	}

	var failed []models.QueuedScan
	for _, item := range snapshot {
		age := q.now().Sub(time.UnixMilli(item.QueuedAt))
		if age > q.maxAge {
			log.Printf("offline queue: dropping expired scan %s (age %s)", item.ID, age.Round(time.Second))
			continue
		}

		if err := replay(ctx, item); err != nil {
			item.RetryCount++
			if item.RetryCount >= q.maxRetries {
				log.Printf("offline queue: dropping scan %s after %d failed replays", item.ID, item.RetryCount)
				continue
			}
			log.Printf("offline queue: replay of %s failed (attempt %d): %v", item.ID, item.RetryCount, err)
			failed = append(failed, item)
			continue
		}
		log.Printf("offline queue: delivered scan %s", item.ID)
	}

	q.requeue(ctx, failed)
}

// requeue puts items back at the head, ahead of anything enqueued during
// the drain, preserving FIFO order overall.
func (q *Queue) requeue(ctx context.Context, items []models.QueuedScan) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(items, q.items...)
	if err := q.store.SaveQueue(ctx, q.items); err != nil {
		log.Printf("offline queue: failed to persist queue: %v", err)
	}
}
