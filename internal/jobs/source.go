// Package jobs aggregates job listings from the fixed set of job sources,
// tracks per-source loading state and pipes results through ATS scoring.
package jobs

import (
	"fmt"

	"github.com/starford/careerlift/internal/apperr"
)

// Source is a known job board. The declaration order is the fetch order and
// the display order.
type Source int

const (
	USAJobs Source = iota
	Adzuna
	Remotive
	WeWorkRemotely
)

var allSources = [...]Source{USAJobs, Adzuna, Remotive, WeWorkRemotely}

var sourceKeys = [...]string{"usajobs", "adzuna", "remotive", "weworkremotely"}

var sourceLabels = [...]string{"USAJOBS", "Adzuna", "Remotive", "WeWorkRemotely"}

// Sources returns every source in fetch order.
func Sources() []Source {
	out := make([]Source, len(allSources))
	copy(out, allSources[:])
	return out
}

// Key is the backend identifier of the source.
func (s Source) Key() string {
	if s < 0 || int(s) >= len(sourceKeys) {
		return fmt.Sprintf("source(%d)", int(s))
	}
	return sourceKeys[s]
}

// Label is the display name of the source.
func (s Source) Label() string {
	if s < 0 || int(s) >= len(sourceLabels) {
		return s.Key()
	}
	return sourceLabels[s]
}

func (s Source) String() string {
	return s.Key()
}

// ParseSource resolves a backend identifier.
func ParseSource(key string) (Source, error) {
	for i, k := range sourceKeys {
		if k == key {
			return Source(i), nil
		}
	}
	return 0, fmt.Errorf("jobs: unknown source %q: %w", key, apperr.ErrInvalid)
}
