package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultTickInterval     = time.Second
	DefaultWarningThreshold = 2 * time.Minute
)

// Level classifies the remaining session lifetime.
type Level int

const (
	LevelNone Level = iota // no session
	LevelActive
	LevelWarning
	LevelExpired
)

func (l Level) String() string {
	switch l {
	case LevelActive:
		return "active"
	case LevelWarning:
		return "warning"
	case LevelExpired:
		return "expired"
	default:
		return "none"
	}
}

// Classify maps the time left to a Level. The warning boundary is
// inclusive: exactly threshold left is already a warning.
func Classify(timeLeft, threshold time.Duration) Level {
	switch {
	case timeLeft <= 0:
		return LevelExpired
	case timeLeft <= threshold:
		return LevelWarning
	default:
		return LevelActive
	}
}

// FormatTimeLeft renders d as "M:SS min", or "abgelaufen" once nothing is
// left. Partial seconds are truncated.
func FormatTimeLeft(d time.Duration) string {
	ms := d.Milliseconds()
	if ms <= 0 {
		return "abgelaufen"
	}
	return fmt.Sprintf("%d:%02d min", ms/60000, (ms%60000)/1000)
}

// Status is the result of one clock tick.
type Status struct {
	Level    Level
	TimeLeft time.Duration
}

// Label is the formatted time left.
func (s Status) Label() string {
	return FormatTimeLeft(s.TimeLeft)
}

// Clock recomputes the session's remaining lifetime once per interval
// while a session exists. It only reports; logging out is left to the
// server's 401.
type Clock struct {
	sessions  *Store
	clock     clockwork.Clock
	logger    *slog.Logger
	interval  time.Duration
	threshold time.Duration

	mu          sync.Mutex
	status      Status
	listeners   []func(Status)
	unsubscribe func()
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// NewClock creates a clock over sessions. Non-positive interval and
// threshold fall back to one second and two minutes.
func NewClock(sessions *Store, clock clockwork.Clock, logger *slog.Logger, interval, threshold time.Duration) *Clock {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if threshold <= 0 {
		threshold = DefaultWarningThreshold
	}

	return &Clock{
		sessions:  sessions,
		clock:     clock,
		logger:    logger,
		interval:  interval,
		threshold: threshold,
	}
}

// OnChange registers fn to be called whenever the level changes. Register
// listeners before Start.
func (c *Clock) OnChange(fn func(Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Status returns the result of the latest tick.
func (c *Clock) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Start follows the session: the tick loop runs while a session exists and
// stops when it ends.
func (c *Clock) Start() {
	c.mu.Lock()
	if c.unsubscribe != nil {
		c.mu.Unlock()
		return
	}
	c.unsubscribe = c.sessions.Subscribe(c.sessionChanged)
	c.mu.Unlock()

	if c.sessions.Snapshot().Active() {
		c.startLoop()
		c.Tick()
	}
	c.logger.Info("session clock started", "interval", c.interval)
}

// Stop ends the tick loop and the session subscription. It blocks until
// the loop has exited.
func (c *Clock) Stop() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe == nil {
		return
	}
	unsubscribe()
	c.stopLoop()
	c.logger.Info("session clock stopped")
}

// Tick recomputes the status from the current claims and wall clock.
func (c *Clock) Tick() Status {
	next := Status{Level: LevelNone}
	if claims := c.sessions.Claims(); claims != nil {
		left := claims.TimeLeft(c.clock.Now())
		next = Status{Level: Classify(left, c.threshold), TimeLeft: left}
	}

	c.mu.Lock()
	prev := c.status
	c.status = next
	listeners := c.listeners
	c.mu.Unlock()

	if prev.Level != next.Level {
		c.logger.Debug("session level changed", "from", prev.Level, "to", next.Level)
		for _, fn := range listeners {
			fn(next)
		}
	}
	return next
}

func (c *Clock) sessionChanged(snap Snapshot) {
	if snap.Active() {
		c.startLoop()
	} else {
		c.stopLoop()
	}
	c.Tick()
}

func (c *Clock) startLoop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Not started, stopped, or already running.
	if c.unsubscribe == nil || c.stopCh != nil {
		return
	}

	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	go c.run(c.clock.NewTicker(c.interval), c.stopCh, c.doneCh)
}

func (c *Clock) stopLoop() {
	c.mu.Lock()
	stopCh, doneCh := c.stopCh, c.doneCh
	c.stopCh, c.doneCh = nil, nil
	c.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh
}

// run is the tick loop.
func (c *Clock) run(ticker clockwork.Ticker, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			c.Tick()
		case <-stopCh:
			return
		}
	}
}
