package jobs

import (
	"fmt"

	"github.com/starford/careerlift/internal/apperr"
	"github.com/starford/careerlift/internal/models"
)

// FailurePolicy decides what a failed search keeps.
type FailurePolicy string

const (
	// DiscardAll drops every result of the failed search.
	DiscardAll FailurePolicy = "discard_all"
	// KeepCompleted keeps the sources that finished before the failure.
	KeepCompleted FailurePolicy = "keep_completed"
)

// ParseFailurePolicy validates a policy name. Empty selects DiscardAll.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "":
		return DiscardAll, nil
	case DiscardAll, KeepCompleted:
		return FailurePolicy(s), nil
	}
	return "", fmt.Errorf("jobs: unknown failure policy %q: %w", s, apperr.ErrInvalid)
}

// Results maps each source to its listings. Values are treated as
// immutable; use With to derive a new mapping.
type Results map[Source][]models.JobListing

// With returns a copy of r where src holds jobs.
func (r Results) With(src Source, jobs []models.JobListing) Results {
	out := make(Results, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	out[src] = jobs
	return out
}

// Total counts every listing.
func (r Results) Total() int {
	n := 0
	for _, v := range r {
		n += len(v)
	}
	return n
}

// MergeSearch combines the previous results with what a search produced.
// A successful search replaces each completed source. A failed one follows
// policy: DiscardAll clears everything, KeepCompleted keeps only the sources
// this search finished.
func MergeSearch(prev, completed Results, failed bool, policy FailurePolicy) Results {
	if failed {
		if policy == KeepCompleted {
			out := make(Results, len(completed))
			for k, v := range completed {
				out[k] = v
			}
			return out
		}
		return Results{}
	}
	out := make(Results, len(prev)+len(completed))
	for k, v := range prev {
		out[k] = v
	}
	for k, v := range completed {
		out[k] = v
	}
	return out
}
