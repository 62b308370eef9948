package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/starford/careerlift/internal/apperr"
	"github.com/starford/careerlift/internal/backend"
	"github.com/starford/careerlift/internal/metrics"
	"github.com/starford/careerlift/internal/models"
)

// User-facing messages.
const (
	NoticeNoJobs      = "No jobs found from any source. Try adjusting your search filters."
	MsgMissingURL     = "Job must have an apply URL"
	MsgGraphAddFailed = "Failed to add job to knowledge graph"
)

// Event kinds published to the EventSink.
const (
	EventSourceState    = "source.state"
	EventSearchDone     = "search.done"
	EventATSProgress    = "ats.progress"
	EventJobAdded       = "job.added"
	EventResumeSelected = "resume.selected"
	EventMessage        = "message"
)

// Backend is the subset of the backend client the controller needs.
type Backend interface {
	FetchLive(ctx context.Context, req backend.FetchRequest) (*backend.FetchResult, error)
	CalculateATS(ctx context.Context, jobs []models.JobListing, resumeID string) ([]models.JobListing, error)
	AddToGraph(ctx context.Context, job models.JobListing) (*backend.AddResult, error)
	SaveJob(ctx context.Context, req backend.SaveJobRequest) error
	ResumeGraph(ctx context.Context, person string) (*models.GraphData, error)
}

// ResumeCache stores the last viewed resume for other views.
type ResumeCache interface {
	StoreLastResume(ctx context.Context, r models.LastResume) error
	NotifyResumeUpdated(ctx context.Context) error
}

// EventSink receives state change notifications.
type EventSink interface {
	Emit(kind string, data any)
	EmitCoalesced(key, kind string, data any)
}

// Option configures a Controller.
type Option func(*Controller)

// WithResumeCache sets where AddToGraph refreshes the cached resume graph.
func WithResumeCache(rc ResumeCache) Option {
	return func(c *Controller) { c.cache = rc }
}

// WithEventSink sets the sink for state change events.
func WithEventSink(s EventSink) Option {
	return func(c *Controller) { c.sink = s }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller orchestrates fetches across sources. It is safe for
// concurrent use.
type Controller struct {
	backend Backend
	cache   ResumeCache
	sink    EventSink
	metrics *metrics.Collector
	logger  *slog.Logger
	now     func() time.Time
	cfg     Config

	// searchMu serializes whole searches.
	searchMu sync.Mutex

	mu      sync.RWMutex
	query   Query
	states  map[Source]SourceState
	results Results
	resume  *models.ResumeSummary
	errMsg  string
	notice  string
	added   map[string]struct{}
	pending map[string]struct{}

	timerMu sync.Mutex
	timers  map[Source]*ticker

	lanes     map[Source]*lane
	base      context.Context
	cancel    context.CancelFunc
	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a controller and starts one lane per source.
func New(b Backend, cfg Config, opts ...Option) *Controller {
	cfg = cfg.withDefaults()
	base, cancel := context.WithCancel(context.Background())
	c := &Controller{
		backend: b,
		logger:  slog.Default(),
		now:     time.Now,
		cfg:     cfg,
		states:  make(map[Source]SourceState, len(allSources)),
		results: Results{},
		added:   make(map[string]struct{}),
		pending: make(map[string]struct{}),
		timers:  make(map[Source]*ticker),
		lanes:   make(map[Source]*lane, len(allSources)),
		base:    base,
		cancel:  cancel,
		quit:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, src := range allSources {
		c.states[src] = initialState(cfg.DefaultLimit)
		l := newLane(src, cfg.QueueSize, base, c.quit, c.metrics, c.logger)
		c.lanes[src] = l
		c.wg.Add(1)
		go l.loop(&c.wg)
	}
	return c
}

// Close stops every progress timer and lane. Operations started afterwards
// fail with apperr.ErrClosed.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.quit)
		c.stopAllProgress()
		c.wg.Wait()
		c.stopAllProgress()
	})
}

func (c *Controller) closed() bool {
	select {
	case <-c.quit:
		return true
	default:
		return false
	}
}

// Search fetches every source in order, waiting for each before starting
// the next.
func (c *Controller) Search(ctx context.Context, q Query) error {
	if c.closed() {
		return apperr.ErrClosed
	}
	c.searchMu.Lock()
	defer c.searchMu.Unlock()

	c.mu.Lock()
	c.query = q
	c.errMsg, c.notice = "", ""
	for _, src := range allSources {
		c.states[src] = initialState(c.cfg.DefaultLimit)
	}
	c.mu.Unlock()
	for _, src := range allSources {
		c.stopProgress(src)
		c.publishState(src, initialState(c.cfg.DefaultLimit))
	}

	completed := Results{}
	var failErr error
	for _, src := range allSources {
		err := c.lanes[src].submit(ctx, "search", func(ctx context.Context) error {
			st := c.update(src, func(st *SourceState) {
				st.Phase = PhaseFetching
				st.Progress = c.cfg.SearchProgress
				st.Error = ""
			})
			jobs, err := c.fetch(ctx, src, "search", st.Limit, q, false)
			if err != nil {
				c.update(src, func(st *SourceState) {
					st.Phase = PhaseError
					st.Progress = 0
					st.Error = err.Error()
				})
				return err
			}
			completed[src] = jobs
			c.update(src, func(st *SourceState) {
				st.Phase = PhaseIdle
				st.Progress = 100
			})
			return nil
		})
		if err != nil {
			failErr = fmt.Errorf("%s: %w", src.Label(), err)
			break
		}
	}

	c.mu.Lock()
	c.results = MergeSearch(c.results, completed, failErr != nil, c.cfg.FailurePolicy)
	total := c.results.Total()
	if failErr != nil {
		c.errMsg = "Failed to fetch jobs: " + failErr.Error()
	} else if total == 0 {
		c.notice = NoticeNoJobs
	}
	resume := c.resume
	c.mu.Unlock()

	if failErr != nil {
		c.logger.Error("search failed", slog.String("error", failErr.Error()))
		c.emitMessage()
		return &UserError{Msg: "Failed to fetch jobs: " + failErr.Error(), Err: fmt.Errorf("jobs: search: %w", failErr)}
	}
	if total == 0 {
		c.emitMessage()
	}

	if resume != nil && total > 0 {
		if err := c.scoreAll(ctx, resume.ResumeID); err != nil {
			c.logger.Warn("ats scoring after search failed", slog.String("error", err.Error()))
		}
	}
	c.emit(EventSearchDone, map[string]int{"total": total})
	return nil
}

// RefreshSource resets one source to the default page size and fetches it
// again, bypassing caches. Other sources are untouched.
func (c *Controller) RefreshSource(ctx context.Context, src Source) error {
	if _, ok := c.lanes[src]; !ok {
		return fmt.Errorf("jobs: refresh: unknown source %d: %w", int(src), apperr.ErrInvalid)
	}
	return c.lanes[src].submit(ctx, "refresh", func(ctx context.Context) error {
		c.stopProgress(src)
		c.clearMessage()
		c.update(src, func(st *SourceState) {
			st.Limit = c.cfg.DefaultLimit
			st.HasMore = true
			st.Phase = PhaseFetching
			st.Progress = 0
			st.Error = ""
		})

		stop := c.startProgress(src, c.cfg.RefreshTick, c.cfg.RefreshStep)
		jobs, err := c.fetch(ctx, src, "refresh", c.cfg.DefaultLimit, c.currentQuery(), true)
		stop()
		if err != nil {
			msg := fmt.Sprintf("Failed to refresh %s: %v", src.Label(), err)
			c.failSource(src, msg, err)
			return &UserError{Msg: msg, Err: fmt.Errorf("jobs: refresh %s: %w", src, err)}
		}

		c.update(src, func(st *SourceState) { st.Progress = 95 })
		jobs = c.maybeScore(ctx, src, jobs)

		c.mu.Lock()
		c.results = c.results.With(src, jobs)
		c.mu.Unlock()
		c.update(src, func(st *SourceState) {
			st.Phase = PhaseIdle
			st.Progress = 100
		})
		return nil
	})
}

// LoadMore grows the page size of one source by the configured increment
// and fetches again. At the maximum it does nothing.
func (c *Controller) LoadMore(ctx context.Context, src Source) error {
	if _, ok := c.lanes[src]; !ok {
		return fmt.Errorf("jobs: load more: unknown source %d: %w", int(src), apperr.ErrInvalid)
	}
	return c.lanes[src].submit(ctx, "load_more", func(ctx context.Context) error {
		c.clearMessage()
		c.mu.RLock()
		current := c.states[src].Limit
		previous := len(c.results[src])
		c.mu.RUnlock()

		if current >= c.cfg.MaxLimit {
			return nil
		}
		next := min(current+c.cfg.Increment, c.cfg.MaxLimit)

		c.stopProgress(src)
		c.update(src, func(st *SourceState) {
			st.Phase = PhaseFetching
			st.Progress = 0
			st.Error = ""
		})

		stop := c.startProgress(src, c.cfg.LoadMoreTick, c.cfg.LoadMoreStep)
		jobs, err := c.fetch(ctx, src, "load_more", next, c.currentQuery(), false)
		stop()
		if err != nil {
			msg := fmt.Sprintf("Failed to load more from %s: %v", src.Label(), err)
			c.failSource(src, msg, err)
			return &UserError{Msg: msg, Err: fmt.Errorf("jobs: load more %s: %w", src, err)}
		}

		c.update(src, func(st *SourceState) { st.Progress = 95 })
		jobs = c.maybeScore(ctx, src, jobs)

		c.mu.Lock()
		c.results = c.results.With(src, jobs)
		c.mu.Unlock()
		c.update(src, func(st *SourceState) {
			st.Limit = next
			if len(jobs) <= previous {
				st.HasMore = false
			}
			st.Phase = PhaseIdle
			st.Progress = 100
		})
		return nil
	})
}

// SelectResume makes r the active resume, or clears it when r is nil. A
// newly selected resume re-scores the listings already held.
func (c *Controller) SelectResume(ctx context.Context, r *models.ResumeSummary) error {
	if c.closed() {
		return apperr.ErrClosed
	}
	c.mu.Lock()
	prev := c.resume
	if r != nil {
		cp := *r
		c.resume = &cp
	} else {
		c.resume = nil
	}
	hasJobs := c.results.Total() > 0
	c.mu.Unlock()

	id := ""
	if r != nil {
		id = r.ResumeID
	}
	c.emit(EventResumeSelected, map[string]string{"resume_id": id})

	if r == nil || !hasJobs || (prev != nil && prev.ResumeID == r.ResumeID) {
		return nil
	}
	return c.scoreAll(ctx, r.ResumeID)
}

// SelectedResume returns a copy of the active resume, if any.
func (c *Controller) SelectedResume() (models.ResumeSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.resume == nil {
		return models.ResumeSummary{}, false
	}
	return *c.resume, true
}

// Snapshot returns a consistent copy of the whole state in source order.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		Query:   c.query,
		Sources: make([]SourceView, 0, len(allSources)),
		Total:   c.results.Total(),
		Error:   c.errMsg,
		Notice:  c.notice,
		Added:   make([]string, 0, len(c.added)),
		TakenAt: c.now(),
	}
	for _, src := range allSources {
		jobs := slices.Clone(c.results[src])
		if jobs == nil {
			jobs = []models.JobListing{}
		}
		snap.Sources = append(snap.Sources, SourceView{
			StateEvent: stateEvent(src, c.states[src]),
			Count:      len(jobs),
			Jobs:       jobs,
		})
	}
	if c.resume != nil {
		snap.ResumeID = c.resume.ResumeID
	}
	for u := range c.added {
		snap.Added = append(snap.Added, u)
	}
	slices.Sort(snap.Added)
	return snap
}

// State returns the current state of one source.
func (c *Controller) State(src Source) SourceState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.states[src]
}

// Jobs returns a copy of the listings held for src.
func (c *Controller) Jobs(src Source) []models.JobListing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.results[src])
}

func (c *Controller) currentQuery() Query {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.query
}

func (c *Controller) fetch(ctx context.Context, src Source, op string, limit int, q Query, fresh bool) ([]models.JobListing, error) {
	start := time.Now()
	res, err := c.backend.FetchLive(ctx, backend.FetchRequest{
		Source:   src.Key(),
		Keyword:  q.Keyword,
		Location: q.Location,
		Limit:    limit,
		Fresh:    fresh,
	})
	c.metrics.ObserveFetch(src.Key(), op, time.Since(start), err)
	if err != nil {
		c.logger.Error("source fetch failed",
			slog.String("source", src.Key()),
			slog.String("op", op),
			slog.String("error", err.Error()))
		return nil, err
	}
	if res.Message != "" {
		c.logger.Info("source returned a message",
			slog.String("source", src.Key()),
			slog.String("message", res.Message))
	}
	jobs := slices.Clone(res.Jobs)
	for i := range jobs {
		if jobs[i].Source == "" {
			jobs[i].Source = src.Key()
		}
	}
	if jobs == nil {
		jobs = []models.JobListing{}
	}
	return jobs, nil
}

func (c *Controller) update(src Source, fn func(st *SourceState)) SourceState {
	c.mu.Lock()
	st := c.states[src]
	fn(&st)
	c.states[src] = st
	c.mu.Unlock()
	c.publishState(src, st)
	return st
}

// UserError is returned by operations that also set the user-facing
// message. Msg is that message; Err is the cause.
type UserError struct {
	Msg string
	Err error
}

func (e *UserError) Error() string { return e.Err.Error() }

func (e *UserError) Unwrap() error { return e.Err }

// UserMessage returns the user-facing message carried by err, or "".
func UserMessage(err error) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Msg
	}
	return ""
}

func (c *Controller) failSource(src Source, msg string, err error) {
	c.update(src, func(st *SourceState) {
		st.Phase = PhaseError
		st.Progress = 0
		st.Error = err.Error()
	})
	c.setError(msg)
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	c.errMsg = msg
	c.mu.Unlock()
	c.emitMessage()
}

func stateEvent(src Source, st SourceState) StateEvent {
	return StateEvent{Source: src.Key(), Label: src.Label(), Loading: st.Loading(), SourceState: st}
}

func (c *Controller) publishState(src Source, st SourceState) {
	if c.sink == nil {
		return
	}
	c.sink.EmitCoalesced(src.Key(), EventSourceState, stateEvent(src, st))
}

func (c *Controller) emit(kind string, data any) {
	if c.sink == nil {
		return
	}
	c.sink.Emit(kind, data)
}

// clearMessage drops the user message and notice left by an earlier
// operation.
func (c *Controller) clearMessage() {
	c.mu.Lock()
	changed := c.errMsg != "" || c.notice != ""
	c.errMsg, c.notice = "", ""
	c.mu.Unlock()
	if changed {
		c.emitMessage()
	}
}

func (c *Controller) emitMessage() {
	c.mu.RLock()
	data := map[string]string{"error": c.errMsg, "notice": c.notice}
	c.mu.RUnlock()
	c.emit(EventMessage, data)
}
