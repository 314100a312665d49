package access_test

import (
	"testing"

	"github.com/julis-sh/console/internal/console/access"
	"github.com/julis-sh/console/internal/console/session"
	"github.com/julis-sh/console/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type staticSource session.Snapshot

func (s staticSource) Snapshot() session.Snapshot { return session.Snapshot(s) }

var (
	adminClaims = &jwtx.Claims{Role: jwtx.RoleAdmin}
	userClaims  = &jwtx.Claims{Role: jwtx.RoleUser}

	anonymous   = session.Snapshot{}
	user        = session.Snapshot{Token: "u", Claims: userClaims}
	admin       = session.Snapshot{Token: "a", Claims: adminClaims}
	staleAdmin  = session.Snapshot{Claims: adminClaims}
	tokenNoRole = session.Snapshot{Token: "x"}
)

func TestPredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		snap          session.Snapshot
		authenticated bool
		admin         bool
	}{
		{"anonymous", anonymous, false, false},
		{"user", user, true, false},
		{"admin", admin, true, true},
		{"stale admin claims without token", staleAdmin, false, false},
		{"token without claims", tokenNoRole, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := access.NewGate(staticSource(tt.snap))
			require.Equal(t, tt.authenticated, g.IsAuthenticated())
			require.Equal(t, tt.admin, g.IsAdmin())
			if !g.IsAuthenticated() {
				require.False(t, g.IsAdmin())
			}
		})
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		snap session.Snapshot
		req  access.Requirement
		want access.Decision
	}{
		{anonymous, access.Public, access.Allow},
		{anonymous, access.Authenticated, access.RedirectLogin},
		{anonymous, access.Admin, access.RedirectLogin},
		{staleAdmin, access.Admin, access.RedirectLogin},
		{user, access.Authenticated, access.Allow},
		{user, access.Admin, access.Forbidden},
		{admin, access.Admin, access.Allow},
	}

	for _, tt := range tests {
		got := access.Check(tt.snap, tt.req)
		require.Equal(t, tt.want, got, "%+v requiring %d", tt.snap, tt.req)
	}
}
