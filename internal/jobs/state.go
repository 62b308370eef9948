package jobs

import (
	"time"

	"github.com/starford/careerlift/internal/models"
)

// Phase is the lifecycle state of one source.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseFetching Phase = "fetching"
	PhaseError    Phase = "error"
)

// SourceState is the per-source loading state. Progress is synthetic UI
// feedback, not measured transfer progress.
type SourceState struct {
	Limit    int    `json:"limit"`
	HasMore  bool   `json:"has_more"`
	Phase    Phase  `json:"phase"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
}

// Loading reports whether a fetch is in flight.
func (s SourceState) Loading() bool {
	return s.Phase == PhaseFetching
}

func initialState(limit int) SourceState {
	return SourceState{Limit: limit, HasMore: true, Phase: PhaseIdle}
}

// Query is the active search filter.
type Query struct {
	Keyword  string `json:"keyword"`
	Location string `json:"location"`
}

// StateEvent is published whenever a source changes state.
type StateEvent struct {
	Source  string `json:"source"`
	Label   string `json:"label"`
	Loading bool   `json:"loading"`
	SourceState
}

// SourceView is one result panel of a snapshot.
type SourceView struct {
	StateEvent
	Count int                 `json:"count"`
	Jobs  []models.JobListing `json:"jobs"`
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	Query    Query        `json:"query"`
	Sources  []SourceView `json:"sources"`
	Total    int          `json:"total"`
	Error    string       `json:"error,omitempty"`
	Notice   string       `json:"notice,omitempty"`
	ResumeID string       `json:"resume_id,omitempty"`
	Added    []string     `json:"added"`
	TakenAt  time.Time    `json:"taken_at"`
}

// Config holds the pagination limits and progress simulation settings.
type Config struct {
	DefaultLimit    int
	Increment       int
	MaxLimit        int
	SearchProgress  int
	RefreshTick     time.Duration
	RefreshStep     int
	LoadMoreTick    time.Duration
	LoadMoreStep    int
	ProgressCeiling int
	QueueSize       int
	FailurePolicy   FailurePolicy
}

// DefaultConfig returns the stock limits: pages of 100 up to 1000.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:    100,
		Increment:       100,
		MaxLimit:        1000,
		SearchProgress:  50,
		RefreshTick:     300 * time.Millisecond,
		RefreshStep:     10,
		LoadMoreTick:    200 * time.Millisecond,
		LoadMoreStep:    15,
		ProgressCeiling: 90,
		QueueSize:       8,
		FailurePolicy:   DiscardAll,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = d.DefaultLimit
	}
	if c.Increment <= 0 {
		c.Increment = d.Increment
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = d.MaxLimit
	}
	if c.SearchProgress <= 0 {
		c.SearchProgress = d.SearchProgress
	}
	if c.RefreshTick <= 0 {
		c.RefreshTick = d.RefreshTick
	}
	if c.RefreshStep <= 0 {
		c.RefreshStep = d.RefreshStep
	}
	if c.LoadMoreTick <= 0 {
		c.LoadMoreTick = d.LoadMoreTick
	}
	if c.LoadMoreStep <= 0 {
		c.LoadMoreStep = d.LoadMoreStep
	}
	if c.ProgressCeiling <= 0 {
		c.ProgressCeiling = d.ProgressCeiling
	}
	if c.QueueSize <= 0 {
		c.QueueSize = d.QueueSize
	}
	if c.FailurePolicy == "" {
		c.FailurePolicy = d.FailurePolicy
	}
	return c
}
