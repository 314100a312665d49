package view_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/julis-sh/console/internal/console/access"
	"github.com/julis-sh/console/internal/console/session"
	"github.com/julis-sh/console/internal/console/view"
	"github.com/julis-sh/console/pkg/consolesdk"
	"github.com/julis-sh/console/pkg/jwtx"
	"github.com/julis-sh/console/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu      sync.Mutex
	snap    session.Snapshot
	expired bool
}

func (s *fakeSession) Snapshot() session.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *fakeSession) TakeExpiredFlag(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.expired
	s.expired = false
	return was
}

func (s *fakeSession) set(role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = session.Snapshot{Token: "tok-" + role, Claims: &jwtx.Claims{Role: role, Email: role + "@example.org"}}
}

func (s *fakeSession) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = session.Snapshot{}
	s.expired = true
}

// fakeAPI serves canned JSON collections. Paths listed in rejected answer
// like a backend that no longer accepts the token.
type fakeAPI struct {
	sessions *fakeSession
	nav      consolesdk.Navigator

	mu       sync.Mutex
	data     map[string]string
	rejected map[string]bool
	gets     []string
	loginErr error
	resetErr error
}

func (a *fakeAPI) Login(_ context.Context, req consolesdk.LoginRequest) error {
	if a.loginErr != nil {
		return a.loginErr
	}
	a.sessions.set(jwtx.RoleAdmin)
	return nil
}

func (a *fakeAPI) RequestPasswordReset(context.Context, consolesdk.ResetRequest) error {
	return a.resetErr
}

func (a *fakeAPI) ResetPassword(context.Context, consolesdk.ResetPasswordRequest) error {
	return a.resetErr
}

func (a *fakeAPI) GetJSON(_ context.Context, path string, out any) error {
	a.mu.Lock()
	a.gets = append(a.gets, path)
	body, ok := a.data[path]
	rejected := a.rejected[path]
	a.mu.Unlock()

	if rejected {
		a.sessions.expire()
		a.nav.NavigateToLogin()
		return &consolesdk.APIError{StatusCode: http.StatusUnauthorized}
	}
	if !ok {
		return &consolesdk.APIError{StatusCode: http.StatusInternalServerError}
	}
	return jsonUnmarshal(body, out)
}

func (a *fakeAPI) calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.gets...)
}

// script answers prompts in order and fails once exhausted.
type script struct{ answers []string }

func (s *script) Prompt(string) (string, error) {
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func (s *script) PromptSecret(label string) (string, error) { return s.Prompt(label) }

type fixture struct {
	sessions *fakeSession
	api      *fakeAPI
	router   *view.Router
	out      *bytes.Buffer
	in       *script
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{sessions: &fakeSession{}, out: &bytes.Buffer{}, in: &script{}}
	f.router = view.NewRouter(f.out, f.in, slogx.Discard())
	f.api = &fakeAPI{
		sessions: f.sessions,
		nav:      f.router,
		data: map[string]string{
			"/users":      `[{"id":1},{"id":2}]`,
			"/auditlog":   `[{"a":1},{"a":2},{"a":3},{"a":4},{"a":5},{"a":6}]`,
			"/recipients": `[]`,
			"/kreise":     `[{"name":"Kiel"}]`,
			"/templates":  `[{"t":1}]`,
			"/upload":     `[]`,
		},
		rejected: map[string]bool{},
	}
	view.Register(f.router, view.Deps{API: f.api, Gate: access.NewGate(f.sessions), Flags: f.sessions})
	return f
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/", "/mail", "/admin", "/admin/users", "/stammdaten", "/users"} {
		t.Run(path, func(t *testing.T) {
			f := newFixture(t)

			err := f.router.Open(context.Background(), path)
			require.ErrorIs(t, err, io.EOF, "login prompt reached")
			require.Equal(t, view.PathLogin, f.router.Current())
			require.Empty(t, f.api.calls())
			require.NotContains(t, f.out.String(), view.TextAdminOnly)
			require.Contains(t, f.out.String(), "== Login ==")
		})
	}
}

func TestNonAdminSeesNotice(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/admin", "/admin/users", "/admin/auditlog", "/admin/files", "/admin/onboarding", "/recipients", "/templates", "/stammdaten"} {
		t.Run(path, func(t *testing.T) {
			f := newFixture(t)
			f.sessions.set(jwtx.RoleUser)

			require.NoError(t, f.router.Open(context.Background(), path))
			require.Equal(t, view.TextAdminOnly+"\n", f.out.String())
			require.Empty(t, f.api.calls())
		})
	}
}

func TestAdminRoutes(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.sessions.set(jwtx.RoleAdmin)

	require.NoError(t, f.router.Open(context.Background(), "/users"))
	require.Equal(t, view.PathAdminUsers, f.router.Current())
	require.Equal(t, []string{"/users"}, f.api.calls())
	require.Contains(t, f.out.String(), "2 Einträge")
	require.Contains(t, f.out.String(), `{"id":2}`)
}

func TestUserRoutes(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.sessions.set(jwtx.RoleUser)

	require.NoError(t, f.router.Open(context.Background(), "/mail"))
	require.Equal(t, []string{"/kreise", "/szenarien"}, f.api.calls())
	require.Contains(t, f.out.String(), "-- Kreise (1) --")
	require.Contains(t, f.out.String(), view.TextLoadFailed)
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	t.Run("counts and recent entries", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.set(jwtx.RoleUser)

		require.NoError(t, f.router.Open(context.Background(), "/"))
		out := f.out.String()
		require.Regexp(t, `Benutzer\s+2\n`, out)
		require.Regexp(t, `Szenarien\s+0\n`, out)
		require.Regexp(t, `Mails gesendet\s+6\n`, out)
		require.Contains(t, out, `{"a":5}`)
		require.NotContains(t, out, `{"a":6}`)
		require.Len(t, f.api.calls(), 6)
	})

	t.Run("rejected session renders nothing", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.set(jwtx.RoleUser)
		f.api.rejected["/kreise"] = true
		f.in.answers = []string{"", ""}

		require.NoError(t, f.router.Open(context.Background(), "/"))
		require.Equal(t, view.PathLogin, f.router.Current())

		out := f.out.String()
		require.NotContains(t, out, "== Mitgliederinformationssystem ==")
		require.NotContains(t, out, "Benutzer")
		require.Contains(t, out, view.TextSessionExpired)
	})
}

func TestUnauthorizedDuringRender(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.sessions.set(jwtx.RoleAdmin)
	f.api.rejected["/templates"] = true
	f.in.answers = []string{"", ""}

	require.NoError(t, f.router.Open(context.Background(), "/templates"))
	require.Equal(t, view.PathLogin, f.router.Current())

	out := f.out.String()
	require.Contains(t, out, view.TextSessionExpired)
	require.NotContains(t, out, "Einträge")
	require.Contains(t, out, "E-Mail ist erforderlich")
}

func TestLoginFlow(t *testing.T) {
	t.Parallel()

	t.Run("success opens the dashboard", func(t *testing.T) {
		f := newFixture(t)
		f.in.answers = []string{"anna@example.org", "secret"}

		require.NoError(t, f.router.Open(context.Background(), "/login"))
		require.Equal(t, view.PathHome, f.router.Current())
		require.NotContains(t, f.out.String(), view.TextSessionExpired)
		require.Contains(t, f.out.String(), "== Mitgliederinformationssystem ==")
	})

	t.Run("expired notice shows once", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.expired = true
		f.in.answers = []string{"bad", "x", "bad", "x"}

		require.NoError(t, f.router.Open(context.Background(), "/login"))
		require.NoError(t, f.router.Open(context.Background(), "/login"))
		require.Equal(t, 1, bytes.Count(f.out.Bytes(), []byte(view.TextSessionExpired)))
		require.Equal(t, 2, bytes.Count(f.out.Bytes(), []byte("Ungültige E-Mail-Adresse")))
	})

	t.Run("server message or fallback", func(t *testing.T) {
		f := newFixture(t)
		f.api.loginErr = &consolesdk.APIError{StatusCode: http.StatusBadRequest, Message: "Benutzer gesperrt"}
		f.in.answers = []string{"anna@example.org", "secret"}

		require.NoError(t, f.router.Open(context.Background(), "/login"))
		require.Contains(t, f.out.String(), "Benutzer gesperrt")
		require.Equal(t, view.PathLogin, f.router.Current())

		f.api.loginErr = errors.New("connection refused")
		f.in.answers = []string{"anna@example.org", "secret"}
		require.NoError(t, f.router.Open(context.Background(), "/login"))
		require.Contains(t, f.out.String(), view.TextLoginFailed)
	})
}

func TestPasswordReset(t *testing.T) {
	t.Parallel()

	t.Run("request always reports sent", func(t *testing.T) {
		f := newFixture(t)
		f.in.answers = []string{"who@example.org"}

		require.NoError(t, f.router.Open(context.Background(), "/reset-request"))
		require.Contains(t, f.out.String(), view.TextResetSent)
	})

	t.Run("missing token", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.router.Open(context.Background(), "/reset-password"))
		require.Equal(t, view.TextResetNoToken+"\n", f.out.String())
	})

	t.Run("mismatch stays", func(t *testing.T) {
		f := newFixture(t)
		f.in.answers = []string{"secret1", "secret2"}

		require.NoError(t, f.router.Open(context.Background(), "/reset-password?token=abc"))
		require.Contains(t, f.out.String(), "Passwörter stimmen nicht überein.")
		require.Equal(t, view.PathResetPassword, f.router.Current())
	})

	t.Run("success goes to login", func(t *testing.T) {
		f := newFixture(t)
		f.in.answers = []string{"secret1", "secret1"}

		err := f.router.Open(context.Background(), "/reset-password?token=abc")
		require.ErrorIs(t, err, io.EOF, "login prompt reached")
		require.Contains(t, f.out.String(), view.TextResetDone)
		require.Equal(t, view.PathLogin, f.router.Current())
	})
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.ErrorIs(t, f.router.Open(context.Background(), "/nope"), view.ErrNotFound)
	require.Contains(t, f.router.Paths(), "/users")
}

func TestNavigationOutsideRender(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.Empty(t, f.router.TakePending())

	// A 401 on a background renewal asks for login while nothing renders.
	f.router.NavigateToLogin()
	require.Equal(t, view.PathLogin, f.router.TakePending())
	require.Empty(t, f.router.TakePending(), "collected once")

	t.Run("an uncollected request is followed after the next render", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.set(jwtx.RoleUser)
		f.in.answers = []string{"", ""}

		f.router.NavigateToLogin()
		require.NoError(t, f.router.Open(context.Background(), "/mail"))
		require.Equal(t, view.PathLogin, f.router.Current())
	})
}

func TestRedirectLoop(t *testing.T) {
	t.Parallel()

	r := view.NewRouter(io.Discard, &script{}, slogx.Discard())
	r.Handle("/a", view.ViewFunc(func(context.Context, *view.Request) error {
		r.Navigate("/a")
		return nil
	}))
	require.ErrorIs(t, r.Open(context.Background(), "/a"), view.ErrTooManyRedirects)
}

func TestChainOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) view.Guard {
		return func(next view.View) view.View {
			return view.ViewFunc(func(ctx context.Context, req *view.Request) error {
				order = append(order, name)
				return next.Render(ctx, req)
			})
		}
	}
	v := view.Chain(view.ViewFunc(func(context.Context, *view.Request) error {
		order = append(order, "view")
		return nil
	}), mark("first"), mark("second"))

	require.NoError(t, v.Render(context.Background(), &view.Request{}))
	require.Equal(t, []string{"first", "second", "view"}, order)
}
