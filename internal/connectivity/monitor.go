// Package connectivity watches whether the remote store is reachable. The
// signal gates the sync queue's drain; nothing else depends on it.
package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultInterval = 15 * time.Second

// Probe checks reachability. A nil error means online.
type Probe func(ctx context.Context) error

// Monitor polls a probe and exposes the current online state plus a change
// stream. It starts offline until the first successful probe.
type Monitor struct {
	probe    Probe
	changes  chan bool
	interval time.Duration

	mu     sync.RWMutex
	online bool
}

// NewMonitor creates a monitor over the given probe. A non-positive
// interval falls back to the default.
func NewMonitor(probe Probe, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Monitor{
		probe:    probe,
		interval: interval,
		changes:  make(chan bool, 4),
	}
}

// Online reports the last observed reachability.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Changes emits the new state on every online/offline transition.
func (m *Monitor) Changes() <-chan bool {
	return m.changes
}

// Run polls until the context is cancelled. The first probe happens
// immediately so startup doesn't wait a full interval to go online.
func (m *Monitor) Run(ctx context.Context) {
	m.check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

func (m *Monitor) check(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	err := m.probe(probeCtx)
	cancel()

	online := err == nil

	m.mu.Lock()
	changed := online != m.online
	m.online = online
	m.mu.Unlock()

	if !changed {
		return
	}

	slog.Info("Connectivity changed", "online", online)
	select {
	case m.changes <- online:
	default:
	}
}
