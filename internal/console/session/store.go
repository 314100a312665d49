package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/julis-sh/console/internal/console/store"
	"github.com/julis-sh/console/pkg/jwtx"
)

// Snapshot is an immutable view of the session at one point in time.
// Claims is nil exactly when Token is empty.
type Snapshot struct {
	Token  string
	Claims *jwtx.Claims
}

// Active reports whether a session exists.
func (s Snapshot) Active() bool {
	return s.Token != ""
}

// Store owns the bearer token and its decoded claims. The token lives in a
// durable slot so a restarted console resumes the session. Every write is
// a full replace and is announced to subscribers.
type Store struct {
	kv     store.Store
	logger *slog.Logger

	// writeMu serialises writes together with their notifications so
	// subscribers observe changes in order.
	writeMu sync.Mutex

	mu      sync.RWMutex
	current Snapshot

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// NewStore loads the persisted token, if any. A token that no longer
// decodes is removed and the session starts empty.
func NewStore(ctx context.Context, kv store.Store, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		kv:     kv,
		logger: logger,
		subs:   make(map[int]func(Snapshot)),
	}

	raw, err := kv.Get(ctx, store.KeyToken)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	claims, err := jwtx.Decode(raw)
	if err != nil {
		logger.Warn("discarding undecodable persisted token", "error", err)
		if err := kv.Delete(ctx, store.KeyToken); err != nil {
			return nil, fmt.Errorf("failed to discard session: %w", err)
		}
		return s, nil
	}

	s.current = Snapshot{Token: raw, Claims: &claims}
	logger.Info("session restored", "email", claims.Email, "role", claims.Role)
	return s, nil
}

// Token returns the raw bearer token or "" when there is no session.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Claims returns a copy of the decoded claims, nil without a session.
func (s *Store) Claims() *jwtx.Claims {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current.Claims == nil {
		return nil
	}
	c := *s.current.Claims
	return &c
}

// Snapshot returns token and claims read together.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace installs a new token, as done by login. A token that does not
// decode ends the session and returns jwtx.ErrMalformed.
func (s *Store) Replace(ctx context.Context, token string) error {
	_, err := s.replace(ctx, token, false)
	return err
}

// ReplaceActive installs a renewed token only if the session still exists,
// so a renewal finishing after a logout cannot bring the session back. It
// reports whether the token was installed.
func (s *Store) ReplaceActive(ctx context.Context, token string) (bool, error) {
	return s.replace(ctx, token, true)
}

func (s *Store) replace(ctx context.Context, token string, onlyActive bool) (bool, error) {
	claims, decodeErr := jwtx.Decode(token)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if onlyActive && !s.Snapshot().Active() {
		return false, nil
	}

	if decodeErr != nil {
		s.logger.Warn("received undecodable token, ending session")
		s.clearLocked(ctx)
		return false, decodeErr
	}

	if err := s.kv.Set(ctx, store.KeyToken, token); err != nil {
		return false, fmt.Errorf("failed to persist token: %w", err)
	}

	next := Snapshot{Token: token, Claims: &claims}
	s.set(next)
	s.notify(next)
	return true, nil
}

// Clear ends the session, as done by an explicit logout.
func (s *Store) Clear(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.clearLocked(ctx)
}

// Expire ends the session because the server rejected it and leaves a
// one-shot flag for the login view.
func (s *Store) Expire(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.kv.Set(ctx, store.KeySessionExpired, "1"); err != nil {
		s.logger.Error("failed to set session expired flag", "error", err)
	}
	s.clearLocked(ctx)
}

// TakeExpiredFlag reports whether the session was ended by the server and
// resets the flag, so the notice is shown exactly once.
func (s *Store) TakeExpiredFlag(ctx context.Context) bool {
	_, err := s.kv.Take(ctx, store.KeySessionExpired)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("failed to read session expired flag", "error", err)
		}
		return false
	}
	return true
}

// Subscribe registers fn for every session change and returns a function
// that removes it. fn runs while the write lock is held, so it must not
// write to the Store.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) clearLocked(ctx context.Context) {
	// The in-memory session ends even if the durable slot cannot be cleared.
	if err := s.kv.Delete(ctx, store.KeyToken); err != nil {
		s.logger.Error("failed to delete persisted token", "error", err)
	}

	if !s.Snapshot().Active() {
		return
	}

	s.set(Snapshot{})
	s.notify(Snapshot{})
	s.logger.Info("session ended")
}

func (s *Store) set(next Snapshot) {
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
