package netmon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeProber struct {
	latency time.Duration
	err     error
}

func (f *fakeProber) Ping(_ context.Context) (time.Duration, error) {
	return f.latency, f.err
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		latency time.Duration
		err     error
		want    Speed
	}{
		{name: "fast round trip", latency: 120 * time.Millisecond, want: SpeedOnline},
		{name: "just under fast threshold", latency: 499 * time.Millisecond, want: SpeedOnline},
		{name: "slow round trip", latency: 900 * time.Millisecond, want: SpeedSlow},
		{name: "very slow counts as offline", latency: 3 * time.Second, want: SpeedOffline},
		{name: "probe error", err: errors.New("no route to host"), want: SpeedOffline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.latency, tt.err))
		})
	}
}

func TestMonitor_StartsOffline(t *testing.T) {
	m := New(&fakeProber{}, time.Minute)
	assert.False(t, m.IsOnline())
	assert.Equal(t, string(SpeedOffline), m.ConnectionSpeed())
}

func TestMonitor_FiresOnOnlineOncePerTransition(t *testing.T) {
	prober := &fakeProber{err: errors.New("down")}
	m := New(prober, time.Minute)

	fired := 0
	m.OnOnline(func() { fired++ })

	ctx := context.Background()

	m.Measure(ctx)
	assert.False(t, m.IsOnline())
	assert.Equal(t, 0, fired)

	// Offline -> online fires the hook.
	prober.err = nil
	prober.latency = 50 * time.Millisecond
	m.Measure(ctx)
	assert.True(t, m.IsOnline())
	assert.Equal(t, 1, fired)

	// Staying online does not fire again.
	m.Measure(ctx)
	assert.Equal(t, 1, fired)

	// A slow connection is still online; no new transition.
	prober.latency = time.Second
	m.Measure(ctx)
	assert.True(t, m.IsOnline())
	assert.Equal(t, string(SpeedSlow), m.ConnectionSpeed())
	assert.Equal(t, 1, fired)

	// Drop and recover: fires exactly once more.
	prober.err = errors.New("down again")
	m.Measure(ctx)
	assert.False(t, m.IsOnline())
	prober.err = nil
	prober.latency = 10 * time.Millisecond
	m.Measure(ctx)
	assert.Equal(t, 2, fired)
}
