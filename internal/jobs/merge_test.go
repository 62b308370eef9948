package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/careerlift/internal/apperr"
)

func TestMergeSearch(t *testing.T) {
	prev := Results{USAJobs: listings("usajobs", 2), Remotive: listings("remotive", 1)}
	completed := Results{USAJobs: listings("usajobs", 5)}

	got := MergeSearch(prev, completed, false, DiscardAll)
	assert.Len(t, got[USAJobs], 5)
	assert.Len(t, got[Remotive], 1)
	assert.Equal(t, 6, got.Total())

	assert.Empty(t, MergeSearch(prev, completed, true, DiscardAll))

	kept := MergeSearch(prev, completed, true, KeepCompleted)
	assert.Len(t, kept[USAJobs], 5)
	_, ok := kept[Remotive]
	assert.False(t, ok, "sources the failed search never reached are dropped")
}

func TestResultsWithCopies(t *testing.T) {
	r := Results{Adzuna: listings("adzuna", 1)}
	next := r.With(Adzuna, listings("adzuna", 3))
	assert.Len(t, r[Adzuna], 1)
	assert.Len(t, next[Adzuna], 3)
}

func TestParseFailurePolicy(t *testing.T) {
	p, err := ParseFailurePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DiscardAll, p)

	p, err = ParseFailurePolicy("keep_completed")
	require.NoError(t, err)
	assert.Equal(t, KeepCompleted, p)

	_, err = ParseFailurePolicy("keep_some")
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestParseSource(t *testing.T) {
	for _, src := range Sources() {
		got, err := ParseSource(src.Key())
		require.NoError(t, err)
		assert.Equal(t, src, got)
	}
	assert.Equal(t, "WeWorkRemotely", WeWorkRemotely.Label())
	assert.Equal(t, "USAJOBS", USAJobs.Label())

	_, err := ParseSource("indeed")
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}
