package consolesdk

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"golang.org/x/time/rate"
)

// RenewFunc performs one renewal call and returns the fresh token.
type RenewFunc func(ctx context.Context) (string, error)

// Renewer runs fire-and-forget sliding renewals. Triggers never block the
// caller, failures are logged and dropped, and concurrent renewals resolve
// last-write-wins on the session.
type Renewer struct {
	renew    RenewFunc
	sessions SessionStore
	logger   *slog.Logger
	timeout  time.Duration
	limiter  *rate.Limiter

	mu     sync.Mutex
	closed bool
	wg     conc.WaitGroup
}

// NewRenewer creates a coordinator. A zero minInterval renews after every
// trigger; otherwise at most one renewal starts per minInterval.
func NewRenewer(renew RenewFunc, sessions SessionStore, logger *slog.Logger, timeout, minInterval time.Duration) *Renewer {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}

	return &Renewer{
		renew:    renew,
		sessions: sessions,
		logger:   logger,
		timeout:  timeout,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Trigger schedules a renewal and reports whether one was started. Nothing
// is started without a session, after Close, or inside the debounce window.
func (r *Renewer) Trigger() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.sessions.Token() == "" {
		return false
	}
	if !r.limiter.Allow() {
		return false
	}

	r.wg.Go(r.run)
	return true
}

func (r *Renewer) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	token, err := r.renew(ctx)
	if err != nil {
		r.logger.Debug("session renewal failed", "error", err)
		return
	}

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return
	}

	// A logout or 401 that happened while the call was in flight wins.
	replaced, err := r.sessions.ReplaceActive(ctx, token)
	if err != nil {
		r.logger.Warn("failed to store renewed token", "error", err)
		return
	}
	if !replaced {
		r.logger.Debug("session ended during renewal, dropping token")
		return
	}
	r.logger.Debug("session renewed")
}

// Close stops accepting triggers and waits for in-flight renewals.
func (r *Renewer) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.wg.Wait()
}

// Wait blocks until all renewals started so far have finished.
func (r *Renewer) Wait() {
	r.wg.Wait()
}
