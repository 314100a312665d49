package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/julis-sh/console/internal/console/view"
	"github.com/julis-sh/console/pkg/slogx"
)

// errQuit ends the command loop.
var errQuit = errors.New("quit")

const helpText = `Befehle:
  open <pfad>   Ansicht öffnen, z.B. "open /admin/users" (oder nur "/admin/users")
  login         Anmelden
  logout        Abmelden
  menu          Menü und Session-Restzeit anzeigen
  status        Session- und Verbindungsstatus anzeigen
  ping          Verbindung jetzt prüfen
  routes        Alle Pfade auflisten
  help          Diese Hilfe
  quit          Beenden`

// REPL reads and executes commands until quit, end of input, or ctx is
// done. End of input is a normal exit.
func (app *Application) REPL(ctx context.Context) error {
	ctx = slogx.WithContext(ctx, app.logger)

	app.term.Println(helpText)
	if !app.sessions.Snapshot().Active() {
		app.term.Println("Nicht angemeldet. Mit 'login' anmelden.")
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		switch err := app.followNavigation(ctx); {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			app.term.Println("Fehler:", err)
		}

		_, _ = fmt.Fprint(app.term, "> ")
		line, err := app.term.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		err = app.Exec(ctx, line)
		switch {
		case errors.Is(err, errQuit), errors.Is(err, io.EOF):
			return nil
		case err != nil:
			app.term.Println("Fehler:", err)
		}

		app.showSessionToast()
	}
}

// Exec runs one command line. Logs written on its behalf carry the
// command name.
func (app *Application) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd, args := fields[0], fields[1:]
	ctx = slogx.With(ctx, "cmd", cmd)

	// The session may have ended while the prompt waited for input.
	if err := app.followNavigation(ctx); err != nil {
		return err
	}

	if strings.HasPrefix(cmd, "/") {
		return app.open(ctx, cmd)
	}

	switch cmd {
	case "open":
		if len(args) != 1 {
			return errors.New("usage: open <pfad>")
		}
		return app.open(ctx, args[0])
	case "login":
		return app.open(ctx, view.PathLogin)
	case "logout":
		app.sessions.Clear(ctx)
		app.term.Println("Abgemeldet.")
		return nil
	case "menu":
		view.RenderMenu(app.term, app.sessions.Snapshot(), app.expiry.Status())
		return nil
	case "status":
		app.printStatus()
		return nil
	case "ping":
		st := app.monitor.Probe(ctx)
		if st.Reachable {
			app.term.Println("Server erreichbar.")
		}
		return nil
	case "routes":
		for _, p := range app.router.Paths() {
			app.term.Println(p)
		}
		return nil
	case "help":
		app.term.Println(helpText)
		return nil
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unbekannter Befehl %q, 'help' zeigt alle Befehle", cmd)
	}
}

func (app *Application) open(ctx context.Context, path string) error {
	err := app.router.Open(ctx, path)
	if errors.Is(err, view.ErrNotFound) {
		slogx.FromContext(ctx).Debug("unknown route", "path", path)
		return nil
	}
	return err
}

// followNavigation opens a view requested while nothing rendered, such as
// the login view after a background renewal was answered with 401.
func (app *Application) followNavigation(ctx context.Context) error {
	next := app.router.TakePending()
	if next == "" {
		return nil
	}
	slogx.FromContext(ctx).Debug("following pending navigation", "path", next)
	return app.open(ctx, next)
}

func (app *Application) printStatus() {
	snap := app.sessions.Snapshot()
	if !snap.Active() {
		app.term.Println("Session: keine")
	} else {
		st := app.expiry.Status()
		app.term.Println(fmt.Sprintf("Session: %s (%s), %s", snap.Claims.Name(), snap.Claims.Role, st.Label()))
	}

	conn := app.monitor.State()
	if banner := view.ConnectivityBanner(conn); banner != "" {
		app.term.Println(banner)
	} else {
		app.term.Println("Verbindung: ok")
	}
}

// showSessionToast repeats the expiry warning after every command while it
// applies, so it cannot be missed or dismissed.
func (app *Application) showSessionToast() {
	if toast := view.SessionToast(app.expiry.Status()); toast != "" {
		app.term.Println(toast)
	}
}
