package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/careerlift/internal/apperr"
	"github.com/starford/careerlift/internal/backend"
	"github.com/starford/careerlift/internal/models"
)

// AddToGraph posts job to the knowledge graph and marks its URL as added.
// With a resume selected the job is also saved against that resume and the
// cached resume graph is refreshed.
func (c *Controller) AddToGraph(ctx context.Context, job models.JobListing) error {
	url := job.URL()
	if url == "" {
		return fmt.Errorf("jobs: %s: %w", MsgMissingURL, apperr.ErrInvalid)
	}

	c.mu.Lock()
	if _, busy := c.pending[url]; busy {
		c.mu.Unlock()
		return fmt.Errorf("jobs: add %q already in progress: %w", url, apperr.ErrConflict)
	}
	c.pending[url] = struct{}{}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, url)
		c.mu.Unlock()
	}()

	res, err := c.backend.AddToGraph(ctx, job)
	if err == nil && !res.Success {
		msg := res.Message
		if msg == "" {
			msg = MsgGraphAddFailed
		}
		err = fmt.Errorf("%s: %w", msg, apperr.ErrUpstream)
	}
	c.metrics.ObserveGraphAdd(err)
	if err != nil {
		c.logger.Error("add to graph failed",
			slog.String("url", url),
			slog.String("error", err.Error()))
		return fmt.Errorf("jobs: add to graph: %w", err)
	}

	c.mu.Lock()
	c.added[url] = struct{}{}
	resume := c.resume
	c.mu.Unlock()
	c.emit(EventJobAdded, map[string]string{"url": url})

	if resume != nil {
		c.persistForResume(ctx, *resume, url)
	}
	return nil
}

// IsAdded reports whether a job with the same URL was added.
func (c *Controller) IsAdded(job models.JobListing) bool {
	url := job.URL()
	if url == "" {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.added[url]
	return ok
}

func (c *Controller) persistForResume(ctx context.Context, resume models.ResumeSummary, url string) {
	log := c.logger.With(
		slog.String("resume_id", resume.ResumeID),
		slog.String("url", url))

	err := c.backend.SaveJob(ctx, backend.SaveJobRequest{ResumeID: resume.ResumeID, JobApplyURL: url})
	if err != nil {
		log.Warn("save job failed", slog.String("error", err.Error()))
		return
	}

	person := resume.PersonName.String()
	if person == "" {
		log.Warn("selected resume has no person name")
		return
	}
	graph, err := c.backend.ResumeGraph(ctx, person)
	if err != nil {
		log.Warn("reload resume graph failed", slog.String("error", err.Error()))
		return
	}
	if c.cache == nil {
		return
	}
	rec := models.LastResume{
		Filename:   resume.ResumeName,
		GraphData:  graph,
		PersonName: person,
		ResumeName: resume.ResumeName,
		StoredAt:   c.now().UTC(),
	}
	if err := c.cache.StoreLastResume(ctx, rec); err != nil {
		log.Warn("store last resume failed", slog.String("error", err.Error()))
		return
	}
	if err := c.cache.NotifyResumeUpdated(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("resume updated signal failed", slog.String("error", err.Error()))
	}
}

