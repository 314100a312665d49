package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/julis-sh/console/internal/console/session"
	"github.com/julis-sh/console/internal/console/store"
	"github.com/julis-sh/console/pkg/jwtx"
	"github.com/julis-sh/console/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestStoreReplace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := newKV(t)

	s, err := session.NewStore(ctx, kv, slogx.Discard())
	require.NoError(t, err)
	require.False(t, s.Snapshot().Active())
	require.Nil(t, s.Claims())

	tok := newToken(t, jwtx.RoleAdmin, epoch.Add(10*time.Minute))
	require.NoError(t, s.Replace(ctx, tok))

	require.Equal(t, tok, s.Token())
	require.NotNil(t, s.Claims())
	require.Equal(t, "carla@example.org", s.Claims().Email)

	persisted, err := kv.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	require.Equal(t, tok, persisted)

	t.Run("restored after restart", func(t *testing.T) {
		restored, err := session.NewStore(ctx, kv, slogx.Discard())
		require.NoError(t, err)
		require.Equal(t, tok, restored.Token())
		require.True(t, restored.Claims().IsAdmin())
	})
}

func TestStoreMalformed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("replace with garbage ends the session", func(t *testing.T) {
		kv := newKV(t)
		s, err := session.NewStore(ctx, kv, slogx.Discard())
		require.NoError(t, err)
		require.NoError(t, s.Replace(ctx, newToken(t, jwtx.RoleUser, epoch.Add(time.Hour))))

		err = s.Replace(ctx, "not-a-token")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
		require.Equal(t, session.Snapshot{}, s.Snapshot())

		_, err = kv.Get(ctx, store.KeyToken)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("persisted garbage is discarded on load", func(t *testing.T) {
		kv := newKV(t)
		require.NoError(t, kv.Set(ctx, store.KeyToken, "a.b.c"))

		s, err := session.NewStore(ctx, kv, slogx.Discard())
		require.NoError(t, err)
		require.False(t, s.Snapshot().Active())

		_, err = kv.Get(ctx, store.KeyToken)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestStoreExpire(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := newKV(t)

	s, err := session.NewStore(ctx, kv, slogx.Discard())
	require.NoError(t, err)
	require.NoError(t, s.Replace(ctx, newToken(t, jwtx.RoleUser, epoch.Add(time.Hour))))

	s.Expire(ctx)
	require.Empty(t, s.Token())
	require.Nil(t, s.Claims())

	require.True(t, s.TakeExpiredFlag(ctx))
	require.False(t, s.TakeExpiredFlag(ctx), "flag is one-shot")
}

func TestStoreClearLeavesNoFlag(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := session.NewStore(ctx, newKV(t), slogx.Discard())
	require.NoError(t, err)
	require.NoError(t, s.Replace(ctx, newToken(t, jwtx.RoleUser, epoch.Add(time.Hour))))

	s.Clear(ctx)
	require.False(t, s.Snapshot().Active())
	require.False(t, s.TakeExpiredFlag(ctx))
}

func TestStoreSubscribe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := session.NewStore(ctx, newKV(t), slogx.Discard())
	require.NoError(t, err)

	var seen []bool
	unsubscribe := s.Subscribe(func(snap session.Snapshot) {
		require.Equal(t, snap.Token != "", snap.Claims != nil)
		seen = append(seen, snap.Active())
	})

	tok := newToken(t, jwtx.RoleUser, epoch.Add(time.Hour))
	require.NoError(t, s.Replace(ctx, tok))
	require.NoError(t, s.Replace(ctx, tok))
	s.Clear(ctx)
	s.Clear(ctx) // no session, no notification

	unsubscribe()
	require.NoError(t, s.Replace(ctx, tok))

	require.Equal(t, []bool{true, true, false}, seen)
}

func TestStoreReplaceActive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := session.NewStore(ctx, newKV(t), slogx.Discard())
	require.NoError(t, err)

	first := newToken(t, jwtx.RoleUser, epoch.Add(time.Hour))
	renewed := newToken(t, jwtx.RoleUser, epoch.Add(2*time.Hour))

	ok, err := s.ReplaceActive(ctx, renewed)
	require.NoError(t, err)
	require.False(t, ok, "no session to renew")
	require.Empty(t, s.Token())

	require.NoError(t, s.Replace(ctx, first))
	ok, err = s.ReplaceActive(ctx, renewed)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, renewed, s.Token())

	s.Expire(ctx)
	ok, err = s.ReplaceActive(ctx, first)
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, s.Token())
}
