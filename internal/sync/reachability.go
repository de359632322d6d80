package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/marcus/mx/internal/syncclient"
)

// Reachability reports whether the server can currently be reached.
type Reachability interface {
	Reachable() bool
}

const probeTimeout = 5 * time.Second

// Monitor polls the server health endpoint and reports online/offline
// transitions. It satisfies Reachability.
type Monitor struct {
	client   *syncclient.Client
	interval time.Duration
	onChange func(online bool)

	mu     gosync.Mutex
	online bool
	probed bool

	stopOnce gosync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewMonitor creates a reachability monitor. onChange may be nil; when set
// it is called from the polling goroutine on every transition.
func NewMonitor(client *syncclient.Client, interval time.Duration, onChange func(online bool)) *Monitor {
	return &Monitor{
		client:   client,
		interval: interval,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start probes immediately, then keeps polling until Stop.
func (m *Monitor) Start() {
	go func() {
		defer close(m.doneCh)
		m.update(m.probe())

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.update(m.probe())
			}
		}
	}()
}

// Stop halts polling and waits for the goroutine to exit. Safe to call
// more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	<-m.doneCh
}

// Reachable returns the last observed state.
func (m *Monitor) Reachable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline overrides the observed state, firing onChange on transition.
// Used when another code path learns about connectivity first.
func (m *Monitor) SetOnline(online bool) {
	m.update(online)
}

func (m *Monitor) probe() bool {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	_, err := m.client.HealthCheck(ctx)
	return err == nil
}

func (m *Monitor) update(online bool) {
	m.mu.Lock()
	// The first probe only establishes state; transitions fire after that.
	changed := m.probed && m.online != online
	m.online = online
	m.probed = true
	m.mu.Unlock()

	if changed && m.onChange != nil {
		m.onChange(online)
	}
}
