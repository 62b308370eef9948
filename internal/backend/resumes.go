package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/starford/careerlift/internal/models"
)

// SaveJobRequest links a job to a resume.
type SaveJobRequest struct {
	ResumeID    string `json:"resume_id"`
	JobApplyURL string `json:"job_apply_url"`
	Notes       string `json:"notes"`
}

// UploadRequest carries a resume file and optional naming hints.
type UploadRequest struct {
	Filename   string
	Content    io.Reader
	PersonName string
	ResumeName string
}

type resumeList struct {
	Resumes []models.ResumeSummary `json:"resumes"`
}

// ListResumes returns every uploaded resume.
func (c *Client) ListResumes(ctx context.Context) ([]models.ResumeSummary, error) {
	var out resumeList
	if err := c.doJSON(ctx, http.MethodGet, "/api/resume/list", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Resumes == nil {
		out.Resumes = []models.ResumeSummary{}
	}
	return out.Resumes, nil
}

// UploadResume sends a resume file as multipart/form-data.
func (c *Client) UploadResume(ctx context.Context, in UploadRequest) (*models.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", in.Filename)
	if err != nil {
		return nil, fmt.Errorf("backend: multipart: %w", err)
	}
	if _, err := io.Copy(fw, in.Content); err != nil {
		return nil, fmt.Errorf("backend: multipart copy: %w", err)
	}
	if in.PersonName != "" {
		_ = mw.WriteField("person_name", in.PersonName)
	}
	if in.ResumeName != "" {
		_ = mw.WriteField("resume_name", in.ResumeName)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("backend: multipart close: %w", err)
	}

	const path = "/api/resume/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), &buf)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var out models.UploadResult
	if err := c.do(req, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResumeGraph returns the career subgraph of a person.
func (c *Client) ResumeGraph(ctx context.Context, person string) (*models.GraphData, error) {
	var out models.GraphData
	if err := c.doJSON(ctx, http.MethodGet, "/api/resume/graph/"+url.PathEscape(person), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResumeGraphRaw returns the backend's own node/edge rendering.
func (c *Client) ResumeGraphRaw(ctx context.Context, person string) (*models.RawGraph, error) {
	var out models.RawGraph
	if err := c.doJSON(ctx, http.MethodGet, "/api/resume/graph/raw/"+url.PathEscape(person), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveJob links a job to a resume.
func (c *Client) SaveJob(ctx context.Context, req SaveJobRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/api/resume/save-job", nil, req, nil)
}

// SavedJobs lists jobs saved against a resume.
func (c *Client) SavedJobs(ctx context.Context, resumeID string) (*models.SavedJobs, error) {
	var out models.SavedJobs
	if err := c.doJSON(ctx, http.MethodGet, "/api/resume/saved-jobs/"+url.PathEscape(resumeID), nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Jobs == nil {
		out.Jobs = []models.SavedJob{}
	}
	return &out, nil
}

// DeleteSavedJob unlinks a job from a resume.
func (c *Client) DeleteSavedJob(ctx context.Context, resumeID, applyURL string) error {
	path := "/api/resume/saved-job/" + url.PathEscape(resumeID) + "/" + url.PathEscape(applyURL)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}
