// Package netmon tracks connectivity for the scan pipeline.
//
// The monitor owns no sockets itself; it runs an injected probe and turns
// the probe's answers into de-duplicated online/offline transitions.
package netmon

import (
	"context"
	"sync"
	"time"
)

// Probe reports whether the network path to the lookup service works right
// now. It must respect ctx cancellation.
type Probe func(ctx context.Context) bool

const probeTimeout = 3 * time.Second

// Monitor exposes current connectivity plus transition callbacks.
// A Monitor starts offline; the first successful CheckNow flips it online.
type Monitor struct {
	mu           sync.Mutex
	online       bool
	forceOffline bool
	probe        Probe
	callbacks    []func(online bool)
}

// New creates a Monitor around probe. When forceOffline is set the monitor
// reports offline regardless of what the probe says, for degradation drills.
func New(probe Probe, forceOffline bool) *Monitor {
	return &Monitor{probe: probe, forceOffline: forceOffline}
}

// IsOnline returns the last observed status.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnTransition registers fn to run once per actual online↔offline change.
// Redundant probe results do not fire it.
func (m *Monitor) OnTransition(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// CheckNow runs the probe synchronously, records the result, and returns it.
// Used before starting a sync batch to avoid racing a flaky transition.
func (m *Monitor) CheckNow(ctx context.Context) bool {
	if m.forced() {
		m.setStatus(false)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	online := m.probe(ctx)
	m.setStatus(online)
	return online
}

// Watch re-probes on the given interval until ctx is done.
func (m *Monitor) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CheckNow(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) forced() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forceOffline
}

func (m *Monitor) setStatus(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	callbacks := make([]func(bool), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	// Fire outside the lock so a callback may call back into the monitor.
	for _, fn := range callbacks {
		fn(online)
	}
}
