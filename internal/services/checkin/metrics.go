package checkin

import (
	"sync"
	"time"

	"clockin/internal/models"
)

// metricsStore holds per-scan telemetry. Entries are written progressively
// during a scan and swept once they pass the age ceiling so the map cannot
// grow without bound.
type metricsStore struct {
	mu     sync.Mutex
	scans  map[string]*models.ScanMetrics
	maxAge time.Duration
	now    func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

func newMetricsStore(maxAge time.Duration) *metricsStore {
	if maxAge <= 0 {
		maxAge = DefaultMetricsMaxAge
	}
	return &metricsStore{
		scans:  make(map[string]*models.ScanMetrics),
		maxAge: maxAge,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
}

// begin registers telemetry for a new scan and returns it for progressive
// writes. The single-flight latch guarantees one writer at a time.
func (m *metricsStore) begin(scanID, connectionType string) *models.ScanMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := &models.ScanMetrics{
		ScanStartTime:  m.now(),
		ConnectionType: connectionType,
	}
	m.scans[scanID] = entry
	return entry
}

// get returns a copy of the telemetry for one scan.
func (m *metricsStore) get(scanID string) (models.ScanMetrics, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.scans[scanID]
	if !ok {
		return models.ScanMetrics{}, false
	}
	return *entry, true
}

func (m *metricsStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scans)
}

// sweep drops entries older than the age ceiling.
func (m *metricsStore) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-m.maxAge)
	for id, entry := range m.scans {
		if entry.ScanStartTime.Before(cutoff) {
			delete(m.scans, id)
		}
	}
}

// startSweeper compacts the map in the background until close.
func (m *metricsStore) startSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *metricsStore) close() {
	m.stopOnce.Do(func() { close(m.stop) })
}
