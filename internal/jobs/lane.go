package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/careerlift/internal/apperr"
	"github.com/starford/careerlift/internal/metrics"
)

type command struct {
	id   string
	op   string
	ctx  context.Context
	run  func(ctx context.Context) error
	done chan error
}

// lane runs the commands of one source strictly one after another.
// Overlapping operations on the same source queue up instead of racing.
type lane struct {
	source  Source
	cmds    chan command
	base    context.Context
	quit    <-chan struct{}
	metrics *metrics.Collector
	logger  *slog.Logger
}

func newLane(src Source, size int, base context.Context, quit <-chan struct{}, m *metrics.Collector, logger *slog.Logger) *lane {
	return &lane{
		source:  src,
		cmds:    make(chan command, size),
		base:    base,
		quit:    quit,
		metrics: m,
		logger:  logger,
	}
}

func (l *lane) loop(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-l.quit:
			return
		case cmd := <-l.cmds:
			l.metrics.QueueDelta(l.source.Key(), -1)
			cmd.done <- l.exec(cmd)
		}
	}
}

func (l *lane) exec(cmd command) error {
	if err := cmd.ctx.Err(); err != nil {
		return err
	}
	// Commands stop early when the controller shuts down.
	ctx, cancel := context.WithCancel(cmd.ctx)
	defer cancel()
	stop := context.AfterFunc(l.base, cancel)
	defer stop()

	start := time.Now()
	l.logger.Debug("lane command started",
		slog.String("source", l.source.Key()),
		slog.String("op", cmd.op),
		slog.String("command_id", cmd.id))
	err := cmd.run(ctx)
	attrs := []any{
		slog.String("source", l.source.Key()),
		slog.String("op", cmd.op),
		slog.String("command_id", cmd.id),
		slog.Duration("took", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.logger.Debug("lane command finished", attrs...)
	return err
}

// submit enqueues run and waits for it to finish. Once enqueued, a command
// always runs to completion or cancellation before submit returns.
func (l *lane) submit(ctx context.Context, op string, run func(ctx context.Context) error) error {
	select {
	case <-l.quit:
		return apperr.ErrClosed
	default:
	}
	cmd := command{
		id:   uuid.NewString(),
		op:   op,
		ctx:  ctx,
		run:  run,
		done: make(chan error, 1),
	}

	l.metrics.QueueDelta(l.source.Key(), 1)
	select {
	case l.cmds <- cmd:
	case <-ctx.Done():
		l.metrics.QueueDelta(l.source.Key(), -1)
		return ctx.Err()
	case <-l.quit:
		l.metrics.QueueDelta(l.source.Key(), -1)
		return apperr.ErrClosed
	}

	select {
	case err := <-cmd.done:
		return err
	case <-l.quit:
		return apperr.ErrClosed
	}
}
