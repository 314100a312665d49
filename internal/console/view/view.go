// Package view renders the console's screens to a terminal.
//
// Screens are addressed by route path like the web console they replace.
// Access rules are applied by guards wrapped around a screen, the way HTTP
// middleware wraps a handler:
//
//	r.Handle("/admin/users", view.Chain(users, view.RequireAuth(gate, r), view.RequireAdmin(gate)))
package view

import (
	"context"
	"io"
	"net/url"

	"github.com/julis-sh/console/pkg/consolesdk"
)

// Prompter reads user input for forms.
type Prompter interface {
	Prompt(label string) (string, error)
	PromptSecret(label string) (string, error)
}

// API is the part of the HTTP client the screens use.
type API interface {
	Login(ctx context.Context, req consolesdk.LoginRequest) error
	RequestPasswordReset(ctx context.Context, req consolesdk.ResetRequest) error
	ResetPassword(ctx context.Context, req consolesdk.ResetPasswordRequest) error
	GetJSON(ctx context.Context, path string, out any) error
}

// Request is one rendering of a screen.
type Request struct {
	Path  string
	Query url.Values
	Out   io.Writer
	In    Prompter
}

// View renders one screen.
type View interface {
	Render(ctx context.Context, req *Request) error
}

// ViewFunc adapts a function to View.
type ViewFunc func(ctx context.Context, req *Request) error

func (f ViewFunc) Render(ctx context.Context, req *Request) error { return f(ctx, req) }

// Guard wraps a View with an access rule.
type Guard func(next View) View

// Chain wraps v with guards; the first guard runs first.
func Chain(v View, guards ...Guard) View {
	for i := len(guards) - 1; i >= 0; i-- {
		v = guards[i](v)
	}
	return v
}
