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
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/starford/careerlift/internal/api"
	"github.com/starford/careerlift/internal/backend"
	"github.com/starford/careerlift/internal/cache"
	"github.com/starford/careerlift/internal/jobs"
	"github.com/starford/careerlift/internal/localstore"
	"github.com/starford/careerlift/internal/mcpserver"
	"github.com/starford/careerlift/internal/metrics"
	"github.com/starford/careerlift/internal/resumes"
	"github.com/starford/careerlift/internal/scheduler"
	"github.com/starford/careerlift/internal/sse"
)

// SSE event kinds emitted outside the jobs controller.
const (
	EventResumeUpdated = "resume.updated"
	EventJobsRefreshed = "jobs.refreshed"
)

// services holds everything both entry points share.
type services struct {
	cfg     *Config
	logger  *slog.Logger
	store   *localstore.Store
	client  *backend.Client
	rdb     *redis.Client
	cached  *cache.Backend
	metrics *metrics.Collector
	broker  *sse.Broker
	jobs    *jobs.Controller
	resumes *resumes.Service
}

func (s *services) close() {
	s.jobs.Close()
	s.broker.Close()
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			s.logger.Warn("redis close failed", slog.String("error", err.Error()))
		}
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("state store close failed", slog.String("error", err.Error()))
	}
}

func setup(opts []Option) (*services, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("backend_url", cfg.Backend.BaseURL),
		slog.String("sqlite_path", cfg.State.SQLitePath),
		slog.Bool("cache_enabled", cfg.Cache.Enabled()),
		slog.String("refresh_spec", cfg.Scheduler.RefreshSpec),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := localstore.Open(cfg.State.SQLitePath, cfg.State.SignalDir)
	if err != nil {
		return nil, fmt.Errorf("init state store: %w", err)
	}

	s := &services{
		cfg:    cfg,
		logger: logger,
		store:  store,
		client: backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout),
		broker: sse.NewBroker(500 * time.Millisecond),
	}
	if cfg.Metrics.Enabled {
		s.metrics = metrics.New()
	}

	var fetcher jobs.Backend = s.client
	if cfg.Cache.Enabled() {
		s.rdb = redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		s.cached = cache.Wrap(s.client, s.rdb, cfg.Cache.TTL, logger)
		fetcher = s.cached
	}

	s.jobs = jobs.New(fetcher, cfg.JobsConfig(),
		jobs.WithResumeCache(store),
		jobs.WithEventSink(s.broker),
		jobs.WithMetrics(s.metrics),
		jobs.WithLogger(logger),
	)
	s.resumes = resumes.NewService(s.client, store, cfg.GraphOptions(), logger)
	return s, nil
}

// ready reports whether optional dependencies are reachable.
func (s *services) ready(ctx context.Context) error {
	if s.cached == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.cached.Ping(ctx)
}

func (s *services) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := s.ready(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", slog.String("error", err.Error()))
			writeHealth(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeHealth(w, http.StatusOK, "ok")
	})

	if s.metrics != nil {
		r.Handle(s.cfg.Metrics.Path, s.metrics.Handler())
	}

	r.Mount("/api", api.NewRouter(s.jobs, s.resumes, s.cfg.Auth.AuthEnabled(), s.cfg.Auth.Token, s.broker))
	return r
}

func writeHealth(w http.ResponseWriter, status int, state string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, state)
}

// Run starts the dashboard HTTP service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	s, err := setup(opts)
	if err != nil {
		return err
	}
	defer s.close()

	cfg := s.cfg
	logger := s.logger

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: s.router(),
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	// Cancelled once the HTTP server is down so background loops exit too.
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	// Forward resume-updated signals from other processes to SSE clients.
	g.Go(func() error {
		err := localstore.Watch(gCtx, s.store.Signals(), logger, func(sig localstore.Signal) {
			s.broker.Emit(EventResumeUpdated, sig)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("signal watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	if cfg.Scheduler.Enabled() {
		sched := scheduler.New(s.client, cfg.Scheduler.RefreshSpec, cfg.Scheduler.LimitPerSource, logger,
			scheduler.WithOnRefreshed(func(res *backend.RefreshResult) {
				s.broker.Emit(EventJobsRefreshed, res)
			}),
		)
		g.Go(func() error {
			return sched.Run(gCtx)
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
		defer stop()

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tool set over stdio. Logs go to stderr unless
// WithLogOutput says otherwise, since stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	s, err := setup(opts)
	if err != nil {
		return err
	}
	defer s.close()

	srv := mcpserver.New(s.jobs, s.resumes, s.cfg.JobsConfig())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ServeStdio()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}
