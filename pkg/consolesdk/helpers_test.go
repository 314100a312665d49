package consolesdk_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/julis-sh/console/pkg/consolesdk"
	"github.com/julis-sh/console/pkg/slogx"
)

// fakeSession is an in-memory SessionStore.
type fakeSession struct {
	mu       sync.Mutex
	token    string
	replaced []string
	expired  int
}

func (s *fakeSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeSession) Replace(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.replaced = append(s.replaced, token)
	return nil
}

func (s *fakeSession) ReplaceActive(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return false, nil
	}
	s.token = token
	s.replaced = append(s.replaced, token)
	return true, nil
}

func (s *fakeSession) Expire(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expired++
}

func (s *fakeSession) snapshot() (string, []string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, append([]string(nil), s.replaced...), s.expired
}

type countingNav struct{ n atomic.Int32 }

func (c *countingNav) NavigateToLogin() { c.n.Add(1) }

// token builds an unsigned token with the given role and exp seconds.
func token(role string, exp int64) string {
	payload := fmt.Sprintf(`{"role":%q,"exp":%d,"email":"a@b.de"}`, role, exp)
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig"
}

func newTestClient(t *testing.T, h http.Handler, sessions *fakeSession, nav consolesdk.Navigator) *consolesdk.Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := consolesdk.NewClient(consolesdk.Config{
		BaseURL: srv.URL + "/api/",
		Logger:  slogx.Discard(),
	}, sessions, nav)
	t.Cleanup(c.Close)

	return c
}
