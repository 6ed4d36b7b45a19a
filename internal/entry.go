// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/docdesk/internal/api"
	"github.com/starford/docdesk/internal/docservice"
	"github.com/starford/docdesk/internal/monitor"
	"github.com/starford/docdesk/internal/reminder"
	"github.com/starford/docdesk/internal/sse"
	"github.com/starford/docdesk/internal/storage"
	"github.com/starford/docdesk/internal/store"
	"github.com/starford/docdesk/internal/web"
)

// components are the long-lived pieces every command shares.
type components struct {
	cfg    *Config
	logger *slog.Logger
	db     *store.DB
	files  *storage.FS
	broker *sse.Broker
	svc    *docservice.Service
}

func (c *components) Close() {
	c.broker.Close()
	if err := c.db.Close(); err != nil {
		c.logger.Warn("close database", slog.String("error", err.Error()))
	}
}

// newApplication applies opts and installs the JSON logger.
func newApplication(opts ...Option) (*application, *slog.Logger, error) {
	app := &application{logOutput: os.Stdout, input: os.Stdin, output: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return app, logger, nil
}

// setup applies opts, installs the JSON logger and opens storage and the
// database.
func setup(opts ...Option) (*components, error) {
	app, logger, err := newApplication(opts...)
	if err != nil {
		return nil, err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("inbox_enabled", cfg.Inbox.Enabled),
		slog.Int64("session_user", cfg.Session.UserID),
		slog.String("log_level", cfg.App.LogLevel.String()))

	files, err := storage.NewFS(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	broker := sse.NewBroker(cfg.Notifications.DashboardThrottle)

	inboxOwner := cfg.Inbox.OwnerID
	if inboxOwner == 0 {
		inboxOwner = cfg.Session.UserID
	}
	svc := docservice.New(db, files,
		docservice.WithEvents(broker),
		docservice.WithLogger(logger),
		docservice.WithInboxOwner(inboxOwner),
	)
	return &components{cfg: cfg, logger: logger, db: db, files: files, broker: broker, svc: svc}, nil
}

// router builds the HTTP handler tree.
func (c *components) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (no session).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := c.db.Ping(req.Context()); err != nil {
			c.logger.Warn("readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	uid := c.cfg.Session.UserID
	r.With(api.Session(uid)).Mount("/fragments", web.NewFragments(c.svc, c.logger).Routes())
	r.Mount("/", api.NewRouter(c.svc, uid, c.broker.Handler(api.UserID)))
	return r
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	c, err := setup(opts...)
	if err != nil {
		return err
	}
	defer c.Close()
	cfg, logger := c.cfg, c.logger

	if _, err := c.db.User(ctx, cfg.Session.UserID); err != nil {
		logger.Warn("session user not found; run the seed command or create the user",
			slog.Int64("user_id", cfg.Session.UserID))
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           c.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	// Inbox: import what is already there, then watch for new files.
	if cfg.Inbox.Enabled {
		g.Go(func() error {
			return c.watchInbox(gCtx)
		})
	}

	// Due date reminders.
	if cfg.Reminders.Enabled {
		job := c.reminderJob()
		g.Go(func() error {
			return job.Run(gCtx, cfg.Reminders.Interval)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		// Ends open event streams so Shutdown does not wait on them.
		c.broker.Close()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

func (c *components) reminderJob() *reminder.Job {
	return reminder.NewJob(c.db, c.svc, c.cfg.Reminders.NotifyDays, c.logger)
}

// watchInbox scans the inbox once and then watches it until ctx ends.
func (c *components) watchInbox(ctx context.Context) error {
	root := c.cfg.Inbox.Path
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create inbox dir: %w", err)
	}
	cb := func(kind, path string, res monitor.Result) {
		c.logger.Info("inbox file processed",
			slog.String("kind", kind),
			slog.String("path", path),
			slog.Int64("document_id", res.DocumentID))
	}
	if err := monitor.Scan(ctx, root, c.svc, c.logger, cb); err != nil {
		c.logger.Warn("initial inbox scan failed", slog.String("error", err.Error()))
	}
	return monitor.Watch(ctx, root, c.svc, c.logger, cb)
}
