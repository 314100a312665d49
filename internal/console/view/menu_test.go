package view_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/julis-sh/console/internal/console/connectivity"
	"github.com/julis-sh/console/internal/console/session"
	"github.com/julis-sh/console/internal/console/view"
	"github.com/julis-sh/console/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func jsonUnmarshal(body string, out any) error {
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(body), out)
}

func linkPaths(links []view.Link) []string {
	paths := make([]string, 0, len(links))
	for _, l := range links {
		paths = append(paths, l.Path)
	}
	return paths
}

func TestVisibleLinks(t *testing.T) {
	t.Parallel()

	admin := session.Snapshot{Token: "t", Claims: &jwtx.Claims{Role: jwtx.RoleAdmin}}
	user := session.Snapshot{Token: "t", Claims: &jwtx.Claims{Role: jwtx.RoleUser}}
	stale := session.Snapshot{Claims: &jwtx.Claims{Role: jwtx.RoleAdmin}}

	require.Len(t, view.VisibleLinks(admin), len(view.NavLinks))
	require.Equal(t, []string{"/", "/mail"}, linkPaths(view.VisibleLinks(user)))
	require.Equal(t, []string{"/", "/mail"}, linkPaths(view.VisibleLinks(stale)))
}

func TestRenderMenu(t *testing.T) {
	t.Parallel()

	t.Run("no session no menu", func(t *testing.T) {
		var buf bytes.Buffer
		view.RenderMenu(&buf, session.Snapshot{}, session.Status{})
		require.Empty(t, buf.String())
	})

	t.Run("user box", func(t *testing.T) {
		var buf bytes.Buffer
		snap := session.Snapshot{Token: "t", Claims: &jwtx.Claims{Role: jwtx.RoleUser, Email: "bernd@example.org"}}
		view.RenderMenu(&buf, snap, session.Status{Level: session.LevelActive, TimeLeft: 125 * time.Second})

		out := buf.String()
		require.Contains(t, out, "[B] bernd@example.org (user)")
		require.Contains(t, out, "Session: 2:05 min")
		require.NotContains(t, out, "/stammdaten")
		require.Contains(t, out, "Logout")
	})
}

func TestSessionToast(t *testing.T) {
	t.Parallel()

	require.Empty(t, view.SessionToast(session.Status{Level: session.LevelActive, TimeLeft: time.Hour}))
	require.Empty(t, view.SessionToast(session.Status{Level: session.LevelExpired}))
	require.Equal(t,
		"Deine Session läuft in 1:05 min ab. Bitte bleibe aktiv oder speichere deine Arbeit.",
		view.SessionToast(session.Status{Level: session.LevelWarning, TimeLeft: 65 * time.Second}),
	)
}

func TestConnectivityBanner(t *testing.T) {
	t.Parallel()

	require.Empty(t, view.ConnectivityBanner(connectivity.State{Status: connectivity.StatusOnline, Reachable: true}))
	require.Equal(t, view.TextOffline, view.ConnectivityBanner(connectivity.State{
		Status: connectivity.StatusOffline, BannerVisible: true,
	}))
	require.Equal(t, view.TextReconnected, view.ConnectivityBanner(connectivity.State{
		Status: connectivity.StatusJustReconnected, Reachable: true, JustReconnected: true, BannerVisible: true,
	}))
}
