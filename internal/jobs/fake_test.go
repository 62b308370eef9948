package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/starford/careerlift/internal/backend"
	"github.com/starford/careerlift/internal/models"
)

type fakeBackend struct {
	mu       sync.Mutex
	fetches  []backend.FetchRequest
	scored   []string
	saved    []backend.SaveJobRequest
	graphs   []string
	adds     int
	jobs     map[string]int
	fetchErr map[string]error
	atsErr   error
	addRes   *backend.AddResult
	addErr   error
	graphErr error
	saveErr  error

	// gate, when set, blocks every FetchLive until it receives a value.
	gate     chan struct{}
	addGate  chan struct{}
	inFlight map[string]int
	maxPar   map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		jobs:     map[string]int{},
		fetchErr: map[string]error{},
		inFlight: map[string]int{},
		maxPar:   map[string]int{},
	}
}

func listings(source string, n int) []models.JobListing {
	out := make([]models.JobListing, n)
	for i := range out {
		out[i] = models.JobListing{
			Title:    fmt.Sprintf("%s job %d", source, i),
			ApplyURL: fmt.Sprintf("https://%s.example/jobs/%d", source, i),
		}
	}
	return out
}

func (f *fakeBackend) FetchLive(ctx context.Context, req backend.FetchRequest) (*backend.FetchResult, error) {
	f.mu.Lock()
	f.fetches = append(f.fetches, req)
	f.inFlight[req.Source]++
	f.maxPar[req.Source] = max(f.maxPar[req.Source], f.inFlight[req.Source])
	gate := f.gate
	err := f.fetchErr[req.Source]
	n := f.jobs[req.Source]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight[req.Source]--
		f.mu.Unlock()
	}()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	n = min(n, req.Limit)
	return &backend.FetchResult{Jobs: listings(req.Source, n), Count: n, Source: req.Source}, nil
}

func (f *fakeBackend) CalculateATS(_ context.Context, jobs []models.JobListing, resumeID string) ([]models.JobListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.atsErr != nil {
		return nil, f.atsErr
	}
	f.scored = append(f.scored, resumeID)
	out := make([]models.JobListing, len(jobs))
	for i, j := range jobs {
		j.ATSScore = models.NewScore(70)
		out[i] = j
	}
	return out, nil
}

func (f *fakeBackend) AddToGraph(ctx context.Context, job models.JobListing) (*backend.AddResult, error) {
	f.mu.Lock()
	f.adds++
	gate := f.addGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return nil, f.addErr
	}
	if f.addRes != nil {
		return f.addRes, nil
	}
	return &backend.AddResult{Success: true, Job: &job}, nil
}

func (f *fakeBackend) SaveJob(_ context.Context, req backend.SaveJobRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, req)
	return f.saveErr
}

func (f *fakeBackend) ResumeGraph(_ context.Context, person string) (*models.GraphData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.graphs = append(f.graphs, person)
	if f.graphErr != nil {
		return nil, f.graphErr
	}
	return &models.GraphData{Person: models.Record{"name": person}}, nil
}

func (f *fakeBackend) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetches)
}

func (f *fakeBackend) fetchSources() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.fetches))
	for i, r := range f.fetches {
		out[i] = r.Source
	}
	return out
}

func (f *fakeBackend) scoreCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scored)
}

type fakeCache struct {
	mu       sync.Mutex
	stored   []models.LastResume
	notified int
}

func (c *fakeCache) StoreLastResume(_ context.Context, r models.LastResume) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = append(c.stored, r)
	return nil
}

func (c *fakeCache) NotifyResumeUpdated(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notified++
	return nil
}

type recordedEvent struct {
	kind string
	data any
}

type fakeSink struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (s *fakeSink) Emit(kind string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, recordedEvent{kind: kind, data: data})
}

func (s *fakeSink) EmitCoalesced(_, kind string, data any) {
	s.Emit(kind, data)
}

func (s *fakeSink) kinds(kind string) []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []any
	for _, e := range s.events {
		if e.kind == kind {
			out = append(out, e.data)
		}
	}
	return out
}
