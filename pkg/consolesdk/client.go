package consolesdk

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/julis-sh/console/pkg/slogx"
)

// Endpoint paths of the console backend, relative to BaseURL.
const (
	PathLogin         = "/auth/login"
	PathRenew         = "/auth/renew"
	PathRequestReset  = "/auth/request-reset"
	PathResetPassword = "/auth/reset-password"
	PathPing          = "/ping"
)

// SessionStore is the slice of the session the client needs: the bearer
// token to attach, full replaces for login and renewal, and the forced
// logout used on 401.
type SessionStore interface {
	Token() string
	Replace(ctx context.Context, token string) error

	// ReplaceActive replaces the token only while a session exists and
	// reports whether it did.
	ReplaceActive(ctx context.Context, token string) (bool, error)

	Expire(ctx context.Context)
}

// Navigator moves the UI to the login surface.
type Navigator interface {
	NavigateToLogin()
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) NavigateToLogin() { f() }

// Config holds the client's tunables. Zero values fall back to defaults.
type Config struct {
	BaseURL string

	// Timeout bounds every regular request (default 10s).
	Timeout time.Duration

	// PingTimeout bounds a liveness probe (default 3s).
	PingTimeout time.Duration

	// RenewTimeout bounds a background renewal call (default 10s).
	RenewTimeout time.Duration

	// RenewMinInterval debounces renewals; 0 renews after every response.
	RenewMinInterval time.Duration

	// Transport is the base round tripper, http.DefaultTransport if nil.
	Transport http.RoundTripper

	Logger *slog.Logger
}

// Client is the single outbound channel of the console. Every call except
// the liveness probe runs through the stage pipeline.
type Client struct {
	BaseURL     string
	HTTPClient  *http.Client
	PingTimeout time.Duration

	logger   *slog.Logger
	sessions SessionStore
	nav      Navigator
	renewer  *Renewer
	pipeline []Stage
}

// NewClient creates a client bound to a session and a navigator.
func NewClient(cfg Config, sessions SessionStore, nav Navigator) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 3 * time.Second
	}
	if cfg.RenewTimeout <= 0 {
		cfg.RenewTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := &Client{
		BaseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		HTTPClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &slogx.Transport{Base: cfg.Transport, Logger: cfg.Logger},
		},
		PingTimeout: cfg.PingTimeout,
		logger:      cfg.Logger,
		sessions:    sessions,
		nav:         nav,
	}

	c.renewer = NewRenewer(c.Renew, sessions, cfg.Logger, cfg.RenewTimeout, cfg.RenewMinInterval)
	c.pipeline = []Stage{
		attachAuth(sessions),
		renewOnSuccess(c.renewer),
		logoutOn401(sessions, nav, cfg.Logger),
	}

	return c
}

// Close stops scheduling renewals and waits for in-flight ones.
func (c *Client) Close() {
	c.renewer.Close()
}

// Renewer exposes the renewal coordinator, mainly for tests and shutdown.
func (c *Client) Renewer() *Renewer {
	return c.renewer
}
