package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julis-sh/console/internal/console/access"
	"github.com/julis-sh/console/internal/console/connectivity"
	"github.com/julis-sh/console/internal/console/session"
	"github.com/julis-sh/console/internal/console/store"
	"github.com/julis-sh/console/internal/console/store/drivers/redis"
	"github.com/julis-sh/console/internal/console/store/drivers/sqlite"
	"github.com/julis-sh/console/internal/console/view"
	"github.com/julis-sh/console/pkg/consolesdk"
	"github.com/julis-sh/console/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	startupTimeout = 5 * time.Second
)

// Application is the console with all its dependencies.
type Application struct {
	cfg       Config
	logger    *slog.Logger
	logCloser io.Closer
	clock     clockwork.Clock

	kv       store.Store
	sessions *session.Store
	client   *consolesdk.Client
	expiry   *session.Clock
	monitor  *connectivity.Monitor
	gate     *access.Gate
	router   *view.Router
	term     *Terminal
}

// New creates the console reading commands from in and writing to out.
func New(cfg Config, in io.Reader, out io.Writer) (*Application, error) {
	app := &Application{
		cfg:   cfg,
		clock: clockwork.NewRealClock(),
		term:  NewTerminal(in, out),
	}
	app.initLogger()

	if err := app.initStore(); err != nil {
		app.closeLog()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	sessions, err := session.NewStore(ctx, app.kv, app.logger)
	if err != nil {
		_ = app.kv.Close()
		app.closeLog()
		return nil, err
	}
	app.sessions = sessions

	app.initRuntime()
	return app, nil
}

// Run starts the background monitors and the command loop, and blocks
// until the user quits, input ends, or a shutdown signal arrives.
func (app *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}

	replDone := make(chan error, 1)
	go func() {
		replDone <- app.REPL(ctx)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var runErr error
	select {
	case runErr = <-replDone:
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
	}

	if err := app.Shutdown(); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return runErr
}

// Start checks the store and the backend, then starts the session clock
// and the connectivity monitor. An unreachable backend is not fatal, it
// only starts the console offline.
func (app *Application) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pctx, cancel := context.WithTimeout(gctx, startupTimeout)
		defer cancel()
		if err := app.kv.Ping(pctx); err != nil {
			return fmt.Errorf("storage unreachable: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		app.monitor.Probe(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	app.expiry.Start()
	app.monitor.Start(ctx)

	app.logger.Info("console starting", "api", app.cfg.APIURL, "version", BuildVersion)
	return nil
}

// Shutdown stops all timers, waits for in-flight renewals and closes the
// store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down console...")

	var g errgroup.Group
	g.Go(func() error { app.monitor.Stop(); return nil })
	g.Go(func() error { app.expiry.Stop(); return nil })
	g.Go(func() error { app.client.Close(); return nil })
	_ = g.Wait()

	var errs []error
	if err := app.kv.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		errs = append(errs, err)
	}

	app.logger.Info("console stopped")
	app.closeLog()
	return errors.Join(errs...)
}

func (app *Application) initLogger() {
	cfg := slogx.Config{
		Service: "console",
		Version: BuildVersion,
		Env:     app.cfg.Env,
		Level:   app.cfg.LogLevel,
		Format:  app.cfg.LogFormat,
	}

	if app.cfg.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   app.cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		cfg.Output = lj
		app.logCloser = lj
	}

	app.logger = slogx.New(cfg)
}

func (app *Application) closeLog() {
	if app.logCloser != nil {
		_ = app.logCloser.Close()
	}
}

// initStore opens the durable slot behind the session.
func (app *Application) initStore() error {
	switch app.cfg.StorageDriver {
	case StorageRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     app.cfg.Redis.Addr,
			Password: app.cfg.Redis.Password,
			DB:       app.cfg.Redis.DB,
		})
		app.kv = redis.NewStore(client, app.cfg.Redis.Prefix)
		app.logger.Info("using redis session storage", "addr", app.cfg.Redis.Addr)
		return nil

	default:
		dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.StorageFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to open session storage: %w", err)
		}
		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply storage migrations: %w", err)
		}
		app.kv = db
		app.logger.Info("using sqlite session storage", "file", app.cfg.StorageFile)
		return nil
	}
}

// initRuntime wires client, clock, monitor and views around the session.
func (app *Application) initRuntime() {
	app.router = view.NewRouter(app.term, app.term, app.logger)
	app.gate = access.NewGate(app.sessions)

	app.client = consolesdk.NewClient(consolesdk.Config{
		BaseURL:          app.cfg.APIURL,
		Timeout:          app.cfg.HTTPTimeout,
		PingTimeout:      app.cfg.PingTimeout,
		RenewTimeout:     app.cfg.RenewTimeout,
		RenewMinInterval: app.cfg.RenewMinInterval,
		Logger:           app.logger,
	}, app.sessions, app.router)

	app.expiry = session.NewClock(app.sessions, app.clock, app.logger, app.cfg.SessionTick, app.cfg.SessionWarning)
	app.expiry.OnChange(func(st session.Status) {
		if toast := view.SessionToast(st); toast != "" {
			app.term.Println(toast)
		}
	})

	app.monitor = connectivity.NewMonitor(app.client, app.clock, app.logger, connectivity.Config{
		Interval:        app.cfg.PingInterval,
		Timeout:         app.cfg.PingTimeout,
		ReconnectWindow: app.cfg.ReconnectWindow,
	})
	app.monitor.Subscribe(func(st connectivity.State) {
		if banner := view.ConnectivityBanner(st); banner != "" {
			app.term.Println(banner)
		}
	})

	view.Register(app.router, view.Deps{
		API:   app.client,
		Gate:  app.gate,
		Flags: app.sessions,
	})
}
