package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/careerlift/internal/backend"
	"github.com/starford/careerlift/internal/jobs"
	"github.com/starford/careerlift/internal/models"
)

type countingBackend struct {
	jobs.Backend
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingBackend) FetchLive(_ context.Context, req backend.FetchRequest) (*backend.FetchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &backend.FetchResult{
		Jobs:   []models.JobListing{{Title: req.Keyword, ApplyURL: "https://example.com/" + req.Source}},
		Count:  1,
		Source: req.Source,
	}, nil
}

func setup(t *testing.T) (*miniredis.Miniredis, *countingBackend, *Backend) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	inner := &countingBackend{}
	return mr, inner, Wrap(inner, rdb, time.Minute, nil)
}

func TestFetchLiveServesFromCache(t *testing.T) {
	_, inner, b := setup(t)
	ctx := context.Background()
	req := backend.FetchRequest{Source: "remotive", Keyword: "go", Location: "EU", Limit: 100}

	first, err := b.FetchLive(ctx, req)
	require.NoError(t, err)
	second, err := b.FetchLive(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first.Jobs, second.Jobs)
	assert.Equal(t, "remotive", second.Source)

	// A different limit is a different entry.
	req.Limit = 200
	_, err = b.FetchLive(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestFreshBypassesCacheAndRewritesIt(t *testing.T) {
	mr, inner, b := setup(t)
	ctx := context.Background()
	req := backend.FetchRequest{Source: "adzuna", Keyword: "sre", Limit: 100}

	_, err := b.FetchLive(ctx, req)
	require.NoError(t, err)

	req.Fresh = true
	_, err = b.FetchLive(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.True(t, mr.Exists(Key(req)))
}

func TestEntriesExpire(t *testing.T) {
	mr, inner, b := setup(t)
	ctx := context.Background()
	req := backend.FetchRequest{Source: "usajobs", Limit: 100}

	_, err := b.FetchLive(ctx, req)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = b.FetchLive(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestErrorsAreNotCached(t *testing.T) {
	mr, inner, b := setup(t)
	inner.err = errors.New("upstream down")
	req := backend.FetchRequest{Source: "weworkremotely", Limit: 100}

	_, err := b.FetchLive(context.Background(), req)
	require.Error(t, err)
	assert.False(t, mr.Exists(Key(req)))
}

func TestRedisOutageFallsThrough(t *testing.T) {
	mr, inner, b := setup(t)
	mr.Close()

	res, err := b.FetchLive(context.Background(), backend.FetchRequest{Source: "remotive", Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 1, inner.calls)
	assert.Error(t, b.Ping(context.Background()))
}

func TestKeyDependsOnQuery(t *testing.T) {
	a := Key(backend.FetchRequest{Source: "adzuna", Keyword: "go", Limit: 100})
	b := Key(backend.FetchRequest{Source: "adzuna", Keyword: "rust", Limit: 100})
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "careerlift:fetch:adzuna:")
}
