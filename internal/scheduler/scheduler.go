// Package scheduler runs the periodic backend-wide job refresh.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/starford/careerlift/internal/backend"
)

// Refresher triggers a refresh of every source on the backend.
type Refresher interface {
	Refresh(ctx context.Context, limitPerSource int) (*backend.RefreshResult, error)
}

// Scheduler wraps robfig/cron and fires one refresh per tick.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	spec      string
	limit     int
	timeout   time.Duration
	onDone    func(*backend.RefreshResult)
	logger    *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithOnRefreshed registers fn to receive every successful refresh result.
func WithOnRefreshed(fn func(*backend.RefreshResult)) Option {
	return func(s *Scheduler) { s.onDone = fn }
}

// WithTimeout bounds a single refresh call.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

// New creates a scheduler firing on spec, e.g. "@every 6h".
func New(r Refresher, spec string, limitPerSource int, logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		cron:      cron.New(cron.WithLogger(cron.DefaultLogger)),
		refresher: r,
		spec:      spec,
		limit:     limitPerSource,
		timeout:   2 * time.Minute,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run registers the refresh job and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runRefresh(ctx) }); err != nil {
		return fmt.Errorf("scheduler: add %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", slog.String("spec", s.spec), slog.Int("limit_per_source", s.limit))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	res, err := s.refresher.Refresh(ctx, s.limit)
	if err != nil {
		s.logger.Error("scheduled refresh failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("scheduled refresh done",
		slog.Int("total_fetched", res.TotalFetched),
		slog.Duration("took", time.Since(start)))
	if s.onDone != nil {
		s.onDone(res)
	}
}
