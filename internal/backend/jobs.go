package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/starford/careerlift/internal/apperr"
	"github.com/starford/careerlift/internal/models"
)

// FetchRequest selects up to Limit listings from one source.
type FetchRequest struct {
	Source   string
	Keyword  string
	Location string
	Limit    int
	// Fresh asks caching layers to skip stored responses.
	Fresh bool
}

// FetchResult is the fetch-live response body.
type FetchResult struct {
	Jobs    []models.JobListing `json:"jobs"`
	Count   int                 `json:"count"`
	Source  string              `json:"source"`
	Message string              `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// RefreshResult is the response of a backend-side refresh of all sources.
type RefreshResult struct {
	TotalFetched   int            `json:"total_fetched"`
	BySource       map[string]int `json:"by_source"`
	LimitPerSource int            `json:"limit_per_source"`
}

// AddResult is the add-to-graph response body.
type AddResult struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Job     *models.JobListing `json:"job,omitempty"`
}

type atsRequest struct {
	Jobs     []models.JobListing `json:"jobs"`
	ResumeID string              `json:"resume_id"`
}

// FetchLive requests live listings from one source.
func (c *Client) FetchLive(ctx context.Context, req FetchRequest) (*FetchResult, error) {
	q := url.Values{}
	if req.Keyword != "" {
		q.Set("keyword", req.Keyword)
	}
	if req.Location != "" {
		q.Set("location", req.Location)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}

	var out FetchResult
	path := "/jobs/fetch-live/" + url.PathEscape(req.Source)
	if err := c.doJSON(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("backend: fetch %s: %s: %w", req.Source, out.Error, apperr.ErrInvalid)
	}
	if out.Jobs == nil {
		out.Jobs = []models.JobListing{}
	}
	return &out, nil
}

// CalculateATS scores jobs against a resume. The backend returns the same
// listings with ats_score populated.
func (c *Client) CalculateATS(ctx context.Context, jobs []models.JobListing, resumeID string) ([]models.JobListing, error) {
	var out []models.JobListing
	if err := c.doJSON(ctx, http.MethodPost, "/jobs/calculate-ats", nil, atsRequest{Jobs: jobs, ResumeID: resumeID}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.JobListing{}
	}
	return out, nil
}

// Refresh asks the backend to re-pull every source.
func (c *Client) Refresh(ctx context.Context, limitPerSource int) (*RefreshResult, error) {
	q := url.Values{}
	q.Set("limit_per_source", strconv.Itoa(limitPerSource))
	var out RefreshResult
	if err := c.doJSON(ctx, http.MethodPost, "/jobs/refresh", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddToGraph persists a job posting in the knowledge graph.
func (c *Client) AddToGraph(ctx context.Context, job models.JobListing) (*AddResult, error) {
	var out AddResult
	if err := c.doJSON(ctx, http.MethodPost, "/jobs/add-to-graph", nil, job, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
