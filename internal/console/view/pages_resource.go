package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/julis-sh/console/pkg/consolesdk"
	"github.com/sourcegraph/conc/pool"
)

// Section is one backend collection shown on a screen.
type Section struct {
	Title string
	Path  string
}

// Resource lists the collections behind a CRUD screen as JSON.
func Resource(api API, title string, sections ...Section) View {
	return ViewFunc(func(ctx context.Context, req *Request) error {
		_, _ = fmt.Fprintf(req.Out, "== %s ==\n", title)

		for _, s := range sections {
			var items []json.RawMessage
			if err := api.GetJSON(ctx, s.Path, &items); err != nil {
				if errors.Is(err, consolesdk.ErrUnauthorized) {
					return err
				}
				_, _ = fmt.Fprintln(req.Out, consolesdk.MessageOr(err, TextLoadFailed))
				continue
			}

			if len(sections) > 1 {
				_, _ = fmt.Fprintf(req.Out, "-- %s (%d) --\n", s.Title, len(items))
			} else {
				_, _ = fmt.Fprintf(req.Out, "%d Einträge\n", len(items))
			}
			for _, item := range items {
				_, _ = fmt.Fprintln(req.Out, string(item))
			}
		}
		return nil
	})
}

type stat struct {
	Label string
	Path  string
}

var dashboardStats = []stat{
	{"Empfänger", "/recipients"},
	{"Kreise", "/kreise"},
	{"Szenarien", "/szenarien"},
	{"Mail-Templates", "/templates"},
	{"Benutzer", "/users"},
	{"Mails gesendet", "/auditlog"},
}

const recentLogEntries = 5

// Dashboard is the start page: counts of every collection and the most
// recent audit log entries. Collections that fail to load count as empty,
// but a rejected session renders nothing.
func Dashboard(api API) View {
	return ViewFunc(func(ctx context.Context, req *Request) error {
		var (
			mu     sync.Mutex
			counts = make(map[string]int, len(dashboardStats))
			recent []json.RawMessage
		)

		p := pool.New().WithErrors().WithMaxGoroutines(len(dashboardStats))
		for _, s := range dashboardStats {
			p.Go(func() error {
				var items []json.RawMessage
				if err := api.GetJSON(ctx, s.Path, &items); err != nil {
					if errors.Is(err, consolesdk.ErrUnauthorized) {
						return err
					}
					items = nil
				}

				mu.Lock()
				defer mu.Unlock()
				counts[s.Path] = len(items)
				if s.Path == "/auditlog" {
					recent = items[:min(len(items), recentLogEntries)]
				}
				return nil
			})
		}
		if err := p.Wait(); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(req.Out, "== Mitgliederinformationssystem ==")
		for _, s := range dashboardStats {
			_, _ = fmt.Fprintf(req.Out, "%-16s %d\n", s.Label, counts[s.Path])
		}
		if len(recent) > 0 {
			_, _ = fmt.Fprintln(req.Out, "-- Letzte Aktivitäten --")
			for _, entry := range recent {
				_, _ = fmt.Fprintln(req.Out, string(entry))
			}
		}
		return nil
	})
}

type card struct {
	Title string
	Desc  string
	Path  string
}

var adminCards = []card{
	{"Benutzerverwaltung", "Nutzer anlegen, bearbeiten und löschen", PathAdminUsers},
	{"Audit-Log", "Alle sicherheitsrelevanten Aktionen im Überblick", PathAdminAuditLog},
	{"Datei-Galerie", "Dateien hochladen, ansehen, herunterladen und löschen", PathAdminFiles},
	{"Onboarding & Hilfe", "Guides, FAQ und Hilfestellungen für neue Nutzer", PathAdminOnboarding},
}

// AdminDashboard lists the admin screens.
func AdminDashboard() View {
	return ViewFunc(func(ctx context.Context, req *Request) error {
		_, _ = fmt.Fprintln(req.Out, "== Admin-Dashboard ==")
		for _, c := range adminCards {
			_, _ = fmt.Fprintf(req.Out, "%-20s %-22s %s\n", c.Title, c.Path, c.Desc)
		}
		return nil
	})
}

// Onboarding is static help for new users.
func Onboarding() View {
	return ViewFunc(func(ctx context.Context, req *Request) error {
		_, _ = fmt.Fprintln(req.Out, "== Onboarding & Hilfe ==")
		_, _ = fmt.Fprintln(req.Out, "Mit 'open <pfad>' wechselst du die Ansicht, 'menu' zeigt alle verfügbaren Bereiche.")
		_, _ = fmt.Fprintln(req.Out, "Deine Session verlängert sich bei jeder Aktion automatisch.")
		return nil
	})
}
