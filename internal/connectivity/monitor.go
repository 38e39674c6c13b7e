// Package connectivity tracks whether the network is reachable.
//
// A Monitor periodically probes a well-known endpoint and keeps the last
// result in an atomic flag, so callers can read the current state without
// blocking. Subscribers are notified on every transition.
package connectivity

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anurag03-tech/invoked-voice/internal/httpc"
)

// DefaultProbeURL returns HTTP 204 and is reachable from most networks.
const DefaultProbeURL = "https://connectivitycheck.gstatic.com/generate_204"

// DefaultInterval is the gap between probes.
const DefaultInterval = 15 * time.Second

// Monitor observes network reachability.
type Monitor struct {
	probeURL string
	interval time.Duration
	client   *http.Client
	logger   *slog.Logger

	online atomic.Bool

	mu   sync.Mutex
	subs []func(online bool)

	cancel context.CancelFunc
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithProbeURL overrides the probe endpoint.
func WithProbeURL(url string) Option {
	return func(m *Monitor) { m.probeURL = url }
}

// WithInterval overrides the probe interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) { m.interval = d }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) { m.logger = logger.With("component", "connectivity") }
}

// New creates a Monitor. It starts in the online state so that the first
// request after boot is allowed to try the network.
func New(opts ...Option) *Monitor {
	m := &Monitor{
		probeURL: DefaultProbeURL,
		interval: DefaultInterval,
		client:   httpc.NewClient(5 * time.Second),
		logger:   slog.Default().With("component", "connectivity"),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.online.Store(true)
	return m
}

// Start begins probing in the background. Call Stop to shut it down.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	go m.loop(ctx)
}

// Stop halts the probe loop.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Online reports the last observed state.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// SetOnline overrides the current state and notifies subscribers on change.
// Also used by tests to simulate transitions without a network.
func (m *Monitor) SetOnline(online bool) {
	if m.online.Swap(online) == online {
		return
	}
	m.logger.Info("connectivity changed", "online", online)
	m.mu.Lock()
	subs := make([]func(bool), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(online)
	}
}

// Subscribe registers a callback invoked on every state transition.
func (m *Monitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Monitor) loop(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.SetOnline(m.probe(ctx))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SetOnline(m.probe(ctx))
		}
	}
}

func (m *Monitor) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}
