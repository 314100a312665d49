package view

import (
	"fmt"
	"io"

	"github.com/julis-sh/console/internal/console/access"
	"github.com/julis-sh/console/internal/console/connectivity"
	"github.com/julis-sh/console/internal/console/session"
)

// Link is one menu entry.
type Link struct {
	Name  string
	Path  string
	Admin bool
}

// NavLinks is the main menu. Admin entries are hidden from everyone else.
var NavLinks = []Link{
	{Name: "Dashboard", Path: PathHome},
	{Name: "Neue Mail senden", Path: PathMail},
	{Name: "Empfänger", Path: PathRecipients, Admin: true},
	{Name: "Mail-Templates", Path: PathTemplates, Admin: true},
	{Name: "Benutzer", Path: "/users", Admin: true},
	{Name: "Stammdaten", Path: PathStammdaten, Admin: true},
	{Name: "Audit-Log", Path: "/auditlog", Admin: true},
}

// VisibleLinks returns the menu entries the session may see.
func VisibleLinks(snap session.Snapshot) []Link {
	isAdmin := access.IsAdmin(snap)

	links := make([]Link, 0, len(NavLinks))
	for _, l := range NavLinks {
		if l.Admin && !isAdmin {
			continue
		}
		links = append(links, l)
	}
	return links
}

// RenderMenu prints the user box and the menu. Without a session there is
// no menu at all.
func RenderMenu(w io.Writer, snap session.Snapshot, st session.Status) {
	if !access.IsAuthenticated(snap) || snap.Claims == nil {
		return
	}

	c := snap.Claims
	_, _ = fmt.Fprintf(w, "[%s] %s (%s)\n", c.Initial(), c.Name(), c.Role)
	if st.Level != session.LevelNone {
		_, _ = fmt.Fprintf(w, "Session: %s\n", st.Label())
	}
	for _, l := range VisibleLinks(snap) {
		_, _ = fmt.Fprintf(w, "  %-18s %s\n", l.Name, l.Path)
	}
	_, _ = fmt.Fprintln(w, "  Logout")
}

// SessionToast is the warning shown while the session is about to expire,
// or "" when there is nothing to warn about.
func SessionToast(st session.Status) string {
	if st.Level != session.LevelWarning {
		return ""
	}
	return fmt.Sprintf(textSessionToastTmpl, st.Label())
}

// ConnectivityBanner is the banner text for st, or "" when hidden.
func ConnectivityBanner(st connectivity.State) string {
	switch {
	case !st.BannerVisible:
		return ""
	case st.JustReconnected:
		return TextReconnected
	case !st.Reachable:
		return TextOffline
	default:
		return ""
	}
}
