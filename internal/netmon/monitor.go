// Package netmon tracks online/offline transitions and a coarse connection
// quality classification from a lightweight round-trip probe.
package netmon

import (
	"context"
	"log"
	"sync"
	"time"
)

// Speed is the advisory connection classification. It informs metrics and
// UI hints only; correctness decisions rely on the binary online signal and
// on actual call failures.
type Speed string

const (
	SpeedOnline  Speed = "online"
	SpeedSlow    Speed = "slow"
	SpeedOffline Speed = "offline"
)

// Probe timing thresholds and re-measure cadence. The probe never runs more
// often than the interval to avoid probe storms.
const (
	DefaultInterval = 30 * time.Second
	fastThreshold   = 500 * time.Millisecond
	slowThreshold   = 2 * time.Second
)

// Prober performs the lightweight round trip the classification is based on.
type Prober interface {
	Ping(ctx context.Context) (time.Duration, error)
}

// Monitor polls a Prober on a fixed interval and fires the registered
// hooks exactly once per offline-to-online transition.
type Monitor struct {
	prober   Prober
	interval time.Duration

	mu       sync.Mutex
	online   bool
	speed    Speed
	onOnline []func()

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a monitor. It starts pessimistic (offline) until the first
// probe; call Start to begin polling.
func New(prober Prober, interval time.Duration) *Monitor {
	if prober == nil {
		panic("prober is required")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		prober:   prober,
		interval: interval,
		speed:    SpeedOffline,
		stop:     make(chan struct{}),
	}
}

// OnOnline registers a hook invoked on each offline-to-online transition.
// The offline queue's drain is wired here.
func (m *Monitor) OnOnline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = append(m.onOnline, fn)
}

// IsOnline reports the last observed binary connectivity state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// ConnectionSpeed reports the last observed classification.
func (m *Monitor) ConnectionSpeed() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.speed)
}

// Start measures once immediately, then polls until Close.
func (m *Monitor) Start(ctx context.Context) {
	m.Measure(ctx)
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Measure(ctx)
			case <-m.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Close stops the polling loop.
func (m *Monitor) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// Measure runs one probe and updates the state, firing transition hooks.
func (m *Monitor) Measure(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, slowThreshold)
	latency, err := m.prober.Ping(probeCtx)
	cancel()

	speed := classify(latency, err)

	m.mu.Lock()
	wasOnline := m.online
	m.online = speed != SpeedOffline
	m.speed = speed
	var hooks []func()
	if !wasOnline && m.online {
		hooks = append(hooks, m.onOnline...)
	}
	m.mu.Unlock()

	if len(hooks) > 0 {
		log.Printf("network monitor: back online (%s)", speed)
		for _, fn := range hooks {
			fn()
		}
	}
}

func classify(latency time.Duration, err error) Speed {
	switch {
	case err != nil:
		return SpeedOffline
	case latency < fastThreshold:
		return SpeedOnline
	case latency < slowThreshold:
		return SpeedSlow
	default:
		return SpeedOffline
	}
}
