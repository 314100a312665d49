package view

import (
	"context"
	"fmt"

	"github.com/julis-sh/console/internal/console/access"
)

// Navigator switches to another route after the current render.
type Navigator interface {
	Navigate(path string)
}

// Checker evaluates an access requirement against the current session.
type Checker interface {
	Check(req access.Requirement) access.Decision
}

// RequireAuth sends anonymous users to /login without rendering anything.
func RequireAuth(gate Checker, nav Navigator) Guard {
	return func(next View) View {
		return ViewFunc(func(ctx context.Context, req *Request) error {
			if gate.Check(access.Authenticated) != access.Allow {
				nav.Navigate(PathLogin)
				return nil
			}
			return next.Render(ctx, req)
		})
	}
}

// RequireAdmin shows the admin-only notice in place of the screen for
// everyone but admins.
func RequireAdmin(gate Checker) Guard {
	return func(next View) View {
		return ViewFunc(func(ctx context.Context, req *Request) error {
			if gate.Check(access.Admin) != access.Allow {
				_, err := fmt.Fprintln(req.Out, TextAdminOnly)
				return err
			}
			return next.Render(ctx, req)
		})
	}
}
