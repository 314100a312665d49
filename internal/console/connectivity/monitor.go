package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultProbeInterval   = 10 * time.Second
	DefaultProbeTimeout    = 3 * time.Second
	DefaultReconnectWindow = 2 * time.Second
)

// Status is the monitor's state machine position.
type Status int

const (
	StatusOnline Status = iota
	StatusOffline
	StatusJustReconnected
)

func (s Status) String() string {
	switch s {
	case StatusOffline:
		return "offline"
	case StatusJustReconnected:
		return "just_reconnected"
	default:
		return "online"
	}
}

// State is what the banner renders.
type State struct {
	Status          Status
	Reachable       bool
	JustReconnected bool
	BannerVisible   bool
}

func stateOf(s Status) State {
	switch s {
	case StatusOffline:
		return State{Status: s, BannerVisible: true}
	case StatusJustReconnected:
		return State{Status: s, Reachable: true, JustReconnected: true, BannerVisible: true}
	default:
		return State{Status: s, Reachable: true}
	}
}

// Prober checks backend liveness.
type Prober interface {
	Ping(ctx context.Context) error
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context) error

func (f ProberFunc) Ping(ctx context.Context) error { return f(ctx) }

// Config holds the monitor's timings. Zero values use the defaults.
type Config struct {
	Interval        time.Duration
	Timeout         time.Duration
	ReconnectWindow time.Duration
}

// Monitor polls a Prober and tracks reachability:
//
//	Online          --probe fails-->     Offline
//	Offline         --probe succeeds-->  JustReconnected (hide timer armed)
//	JustReconnected --hide timer-->      Online
//	JustReconnected --probe fails-->     Offline (hide timer canceled)
type Monitor struct {
	prober Prober
	clock  clockwork.Clock
	logger *slog.Logger
	cfg    Config

	// emitMu orders transitions with their notifications.
	emitMu sync.Mutex

	mu         sync.Mutex
	status     Status
	listeners  []func(State)
	hideTimer  clockwork.Timer
	generation uint64
	stopped    bool
	cancel     context.CancelFunc
	doneCh     chan struct{}
}

// NewMonitor creates a monitor in the Online state. Nothing is polled
// until Start.
func NewMonitor(prober Prober, clock clockwork.Clock, logger *slog.Logger, cfg Config) *Monitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultProbeInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultProbeTimeout
	}
	if cfg.ReconnectWindow <= 0 {
		cfg.ReconnectWindow = DefaultReconnectWindow
	}

	return &Monitor{
		prober: prober,
		clock:  clock,
		logger: logger,
		cfg:    cfg,
	}
}

// Subscribe registers fn for every state change. Listeners may read the
// monitor but must not block.
func (m *Monitor) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// State returns the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return stateOf(m.status)
}

// Start launches the probe loop. The first probe runs one interval after
// Start.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.doneCh != nil || m.stopped {
		return
	}

	ctx, m.cancel = context.WithCancel(ctx)
	m.doneCh = make(chan struct{})
	go m.run(ctx, m.clock.NewTicker(m.cfg.Interval), m.doneCh)

	m.logger.Info("connectivity monitor started", "interval", m.cfg.Interval)
}

// Stop cancels the probe loop and any pending hide timer and waits for the
// loop to exit. Results arriving afterwards are ignored.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	m.cancelHideLocked()
	cancel, doneCh := m.cancel, m.doneCh
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-doneCh
	}
	m.logger.Info("connectivity monitor stopped")
}

// Probe runs one liveness check and applies its result.
func (m *Monitor) Probe(ctx context.Context) State {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	err := m.prober.Ping(ctx)
	if err != nil {
		m.logger.Debug("liveness probe failed", "error", err)
	}
	m.Report(err)
	return m.State()
}

// Report applies a probe result to the state machine.
func (m *Monitor) Report(probeErr error) {
	m.transition(func() bool {
		if probeErr != nil {
			m.cancelHideLocked()
			if m.status == StatusOffline {
				return false
			}
			m.status = StatusOffline
			return true
		}

		// Success only matters when we were offline. A success during the
		// reconnect window leaves the pending timer alone.
		if m.status != StatusOffline {
			return false
		}

		m.status = StatusJustReconnected
		m.generation++
		gen := m.generation
		m.hideTimer = m.clock.AfterFunc(m.cfg.ReconnectWindow, func() { m.hide(gen) })
		return true
	})
}

// hide ends the reconnect window armed under generation gen.
func (m *Monitor) hide(gen uint64) {
	m.transition(func() bool {
		if gen != m.generation || m.status != StatusJustReconnected {
			return false
		}
		m.hideTimer = nil
		m.status = StatusOnline
		return true
	})
}

func (m *Monitor) transition(fn func() bool) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	prev := m.status
	changed := fn()
	state := stateOf(m.status)
	listeners := m.listeners
	m.mu.Unlock()

	if !changed {
		return
	}

	level := slog.LevelInfo
	if state.Status == StatusOffline {
		level = slog.LevelWarn
	}
	m.logger.Log(context.Background(), level, "connectivity changed", "from", prev, "to", state.Status)

	for _, fn := range listeners {
		fn(state)
	}
}

func (m *Monitor) cancelHideLocked() {
	if m.hideTimer != nil {
		m.hideTimer.Stop()
		m.hideTimer = nil
	}
	m.generation++
}

// run is the probe loop.
func (m *Monitor) run(ctx context.Context, ticker clockwork.Ticker, doneCh chan struct{}) {
	defer close(doneCh)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			m.Probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}
