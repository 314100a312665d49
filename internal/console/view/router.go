package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"sync"

	"github.com/julis-sh/console/pkg/consolesdk"
)

const maxHops = 8

var (
	ErrNotFound         = errors.New("view: no such route")
	ErrTooManyRedirects = errors.New("view: too many redirects")
)

// Router maps paths to views and follows navigations requested while a
// view renders.
type Router struct {
	logger *slog.Logger
	out    io.Writer
	in     Prompter

	routes    map[string]View
	redirects map[string]string

	mu      sync.Mutex
	current string
	pending string
}

func NewRouter(out io.Writer, in Prompter, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		logger:    logger,
		out:       out,
		in:        in,
		routes:    make(map[string]View),
		redirects: make(map[string]string),
	}
}

// Handle registers v for path.
func (r *Router) Handle(path string, v View) {
	r.routes[path] = v
}

// Redirect makes from an alias of to.
func (r *Router) Redirect(from, to string) {
	r.redirects[from] = to
}

// Navigate requests a switch to path. Open follows it once the current
// render returns. A request made while nothing renders, such as a 401 on a
// background renewal, stays pending until TakePending collects it.
func (r *Router) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = path
}

// NavigateToLogin lets the router serve as the HTTP client's Navigator.
func (r *Router) NavigateToLogin() {
	r.Navigate(PathLogin)
}

// TakePending returns and clears the navigation requested outside a
// render, or "" when there is none.
func (r *Router) TakePending() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.pending
	r.pending = ""
	return next
}

// Current is the path of the last rendered view.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Paths lists all routable paths, redirects included.
func (r *Router) Paths() []string {
	paths := make([]string, 0, len(r.routes)+len(r.redirects))
	for p := range r.routes {
		paths = append(paths, p)
	}
	for p := range r.redirects {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Open renders target (a path, optionally with a query) and then every
// navigation requested while it rendered, including one that arrived from
// the background.
func (r *Router) Open(ctx context.Context, target string) error {
	for hop := 0; hop < maxHops; hop++ {
		u, err := url.Parse(target)
		if err != nil {
			return fmt.Errorf("invalid path %q: %w", target, err)
		}

		path := u.Path
		if to, ok := r.redirects[path]; ok {
			path = to
		}

		v, ok := r.routes[path]
		if !ok {
			_, _ = fmt.Fprintln(r.out, TextNotFound)
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		r.mu.Lock()
		r.current = path
		r.mu.Unlock()

		r.logger.Debug("rendering view", "path", path)
		err = v.Render(ctx, &Request{Path: path, Query: u.Query(), Out: r.out, In: r.in})

		r.mu.Lock()
		next := r.pending
		r.pending = ""
		r.mu.Unlock()

		if next == "" {
			return err
		}

		// A 401 already logged the session out and asked for login.
		if err != nil && !errors.Is(err, consolesdk.ErrUnauthorized) {
			r.logger.Warn("view failed before navigating", "path", path, "error", err)
		}
		target = next
	}

	return ErrTooManyRedirects
}
