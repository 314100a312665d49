// Package access decides which views the current session may reach.
// Claims are decoded client-side without verification, so these checks
// only shape the UI; the backend authorizes every request on its own.
package access

import (
	"github.com/julis-sh/console/internal/console/session"
)

// Requirement is what a view demands of the session.
type Requirement int

const (
	Public Requirement = iota
	Authenticated
	Admin
)

// Decision is the outcome of a check.
type Decision int

const (
	Allow Decision = iota
	// RedirectLogin means nothing may be rendered, go to login instead.
	RedirectLogin
	// Forbidden means render the admin-only notice in place of content.
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case RedirectLogin:
		return "redirect_login"
	case Forbidden:
		return "forbidden"
	default:
		return "allow"
	}
}

// IsAuthenticated reports whether a token is present. Validity is the
// server's business.
func IsAuthenticated(s session.Snapshot) bool {
	return s.Token != ""
}

// IsAdmin reports whether the session is authenticated with role admin.
// Claims without a token never grant a role.
func IsAdmin(s session.Snapshot) bool {
	return IsAuthenticated(s) && s.Claims != nil && s.Claims.IsAdmin()
}

// Check evaluates req against one snapshot.
func Check(s session.Snapshot, req Requirement) Decision {
	switch req {
	case Public:
		return Allow
	case Authenticated:
		if !IsAuthenticated(s) {
			return RedirectLogin
		}
		return Allow
	default:
		if !IsAuthenticated(s) {
			return RedirectLogin
		}
		if !IsAdmin(s) {
			return Forbidden
		}
		return Allow
	}
}

// SnapshotSource yields the current session.
type SnapshotSource interface {
	Snapshot() session.Snapshot
}

// Gate answers access questions against the live session.
type Gate struct {
	src SnapshotSource
}

func NewGate(src SnapshotSource) *Gate {
	return &Gate{src: src}
}

func (g *Gate) IsAuthenticated() bool {
	return IsAuthenticated(g.src.Snapshot())
}

func (g *Gate) IsAdmin() bool {
	return IsAdmin(g.src.Snapshot())
}

// Check reads the session once and evaluates req.
func (g *Gate) Check(req Requirement) Decision {
	return Check(g.src.Snapshot(), req)
}
