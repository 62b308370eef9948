package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/starford/careerlift/internal/models"
)

// ATSProgress is published after each source has been scored. Processed
// and Total count listings; only successfully scored listings count as
// processed.
type ATSProgress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

func atsProgress(processed, total int) ATSProgress {
	p := ATSProgress{Processed: processed, Total: total}
	if total > 0 {
		p.Percent = int(math.Round(float64(processed) * 100 / float64(total)))
	}
	return p
}

// scoreAll scores every non-empty source against resumeID, one source at
// a time inside that source's lane. A failing source keeps its unscored
// listings and scoring continues with the next one.
func (c *Controller) scoreAll(ctx context.Context, resumeID string) error {
	c.mu.RLock()
	pending := make([]Source, 0, len(allSources))
	total := 0
	for _, src := range allSources {
		if n := len(c.results[src]); n > 0 {
			pending = append(pending, src)
			total += n
		}
	}
	c.mu.RUnlock()

	var errs []error
	var msg string
	processed := 0
	for _, src := range pending {
		scoredCount := 0
		err := c.lanes[src].submit(ctx, "ats", func(ctx context.Context) error {
			jobs := c.Jobs(src)
			if len(jobs) == 0 {
				return nil
			}
			scored, err := c.score(ctx, src, jobs, resumeID)
			if err != nil {
				return err
			}
			scoredCount = len(jobs)
			c.mu.Lock()
			// The selection may have changed while the request was in flight.
			if c.resume != nil && c.resume.ResumeID == resumeID {
				c.results = c.results.With(src, scored)
			}
			c.mu.Unlock()
			return nil
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.Label(), err))
			msg = fmt.Sprintf("Failed to calculate ATS scores: %v", err)
			c.setError(msg)
		}
		processed += scoredCount
		c.emit(EventATSProgress, atsProgress(processed, total))
	}
	if len(errs) == 0 {
		return nil
	}
	return &UserError{Msg: msg, Err: errors.Join(errs...)}
}

// maybeScore scores jobs when a resume is selected. It runs inside the lane
// of src and returns the unscored listings on failure.
func (c *Controller) maybeScore(ctx context.Context, src Source, jobs []models.JobListing) []models.JobListing {
	c.mu.RLock()
	resume := c.resume
	c.mu.RUnlock()
	if resume == nil || len(jobs) == 0 {
		return jobs
	}
	scored, err := c.score(ctx, src, jobs, resume.ResumeID)
	if err != nil {
		c.setError(fmt.Sprintf("Failed to calculate ATS scores: %v", err))
		return jobs
	}
	return scored
}

func (c *Controller) score(ctx context.Context, src Source, jobs []models.JobListing, resumeID string) ([]models.JobListing, error) {
	scored, err := c.backend.CalculateATS(ctx, jobs, resumeID)
	c.metrics.ObserveScoring(src.Key(), err)
	if err != nil {
		c.logger.Warn("ats scoring failed",
			slog.String("source", src.Key()),
			slog.String("resume_id", resumeID),
			slog.String("error", err.Error()))
		return nil, err
	}
	for i := range scored {
		if scored[i].Source == "" {
			scored[i].Source = src.Key()
		}
	}
	return scored, nil
}
