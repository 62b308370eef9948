package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/careerlift/internal/backend"
)

type fakeRefresher struct {
	mu     sync.Mutex
	limits []int
	err    error
}

func (f *fakeRefresher) Refresh(_ context.Context, limit int) (*backend.RefreshResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	return &backend.RefreshResult{TotalFetched: 3 * limit, LimitPerSource: limit}, nil
}

func (f *fakeRefresher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.limits)
}

func TestRunRefreshReportsResult(t *testing.T) {
	r := &fakeRefresher{}
	var got *backend.RefreshResult
	s := New(r, "@every 1h", 50, nil, WithOnRefreshed(func(res *backend.RefreshResult) { got = res }))

	s.runRefresh(context.Background())

	assert.Equal(t, []int{50}, r.limits)
	require.NotNil(t, got)
	assert.Equal(t, 150, got.TotalFetched)
}

func TestRunRefreshFailureSkipsCallback(t *testing.T) {
	r := &fakeRefresher{err: errors.New("backend down")}
	called := false
	s := New(r, "@every 1h", 50, nil, WithOnRefreshed(func(*backend.RefreshResult) { called = true }))

	s.runRefresh(context.Background())
	assert.False(t, called)
}

func TestRunRejectsInvalidSpec(t *testing.T) {
	s := New(&fakeRefresher{}, "not a schedule", 10, nil)
	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a schedule")
}

func TestRunFiresUntilCancelled(t *testing.T) {
	r := &fakeRefresher{}
	s := New(r, "@every 1s", 10, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return r.count() >= 1 }, 3*time.Second, 20*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
