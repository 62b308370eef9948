// Package resumes coordinates resume uploads, graph lookups and the local
// copy of the last viewed resume.
package resumes

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/starford/careerlift/internal/apperr"
	"github.com/starford/careerlift/internal/backend"
	"github.com/starford/careerlift/internal/graphview"
	"github.com/starford/careerlift/internal/models"
)

// AllowedExtensions lists the upload formats the backend can parse.
var AllowedExtensions = []string{".txt", ".md", ".pdf", ".doc", ".docx"}

// Backend is the subset of the backend client used for resumes.
type Backend interface {
	ListResumes(ctx context.Context) ([]models.ResumeSummary, error)
	UploadResume(ctx context.Context, in backend.UploadRequest) (*models.UploadResult, error)
	ResumeGraph(ctx context.Context, person string) (*models.GraphData, error)
	ResumeGraphRaw(ctx context.Context, person string) (*models.RawGraph, error)
	SavedJobs(ctx context.Context, resumeID string) (*models.SavedJobs, error)
	DeleteSavedJob(ctx context.Context, resumeID, applyURL string) error
	LatexTemplates(ctx context.Context) ([]models.TemplateInfo, error)
	CompileLatex(ctx context.Context, req models.CompileRequest) ([]byte, error)
	CompileLatexPreview(ctx context.Context, req models.CompileRequest, page, dpi int) (*backend.Preview, error)
}

// Cache holds the last viewed resume.
type Cache interface {
	LastResume(ctx context.Context) (*models.LastResume, error)
	StoreLastResume(ctx context.Context, r models.LastResume) error
	ClearLastResume(ctx context.Context) error
	NotifyResumeUpdated(ctx context.Context) error
}

// Upload is one resume file to send to the backend.
type Upload struct {
	Filename   string
	Content    io.Reader
	PersonName string
	ResumeName string
}

// Service coordinates the backend and the local cache.
type Service struct {
	backend Backend
	cache   Cache
	opts    graphview.Options
	now     func() time.Time
	logger  *slog.Logger
}

// NewService creates a resume service. Graphs are mapped with opts.
func NewService(b Backend, c Cache, opts graphview.Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{backend: b, cache: c, opts: opts, now: time.Now, logger: logger}
}

// List returns every stored resume.
func (s *Service) List(ctx context.Context) ([]models.ResumeSummary, error) {
	return s.backend.ListResumes(ctx)
}

// Find returns the resume with the given id.
func (s *Service) Find(ctx context.Context, id string) (*models.ResumeSummary, error) {
	all, err := s.backend.ListResumes(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(all, func(r models.ResumeSummary) bool { return r.ResumeID == id })
	if i < 0 {
		return nil, fmt.Errorf("resumes: %q: %w", id, apperr.ErrNotFound)
	}
	return &all[i], nil
}

// CheckFilename rejects files the backend cannot parse.
func CheckFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("resumes: missing filename: %w", apperr.ErrInvalid)
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(AllowedExtensions, ext) {
		return fmt.Errorf("resumes: unsupported file type %q (allowed: %s): %w",
			ext, strings.Join(AllowedExtensions, " "), apperr.ErrInvalid)
	}
	return nil
}

// Upload sends the file to the backend, then caches the parsed result as
// the last viewed resume and raises the resume-updated signal.
func (s *Service) Upload(ctx context.Context, in Upload) (*models.UploadResult, error) {
	if err := CheckFilename(in.Filename); err != nil {
		return nil, err
	}
	res, err := s.backend.UploadResume(ctx, backend.UploadRequest{
		Filename:   in.Filename,
		Content:    in.Content,
		PersonName: in.PersonName,
		ResumeName: in.ResumeName,
	})
	if err != nil {
		return nil, err
	}

	person := res.PersonName.String()
	if person == "" {
		person = in.PersonName
	}
	rec := models.LastResume{
		Filename:     res.Filename,
		TextLength:   res.TextLength,
		GraphData:    res.GraphData,
		NodesCreated: res.NodesCreated,
		PersonName:   person,
		ResumeName:   res.ResumeName,
		StoredAt:     s.now().UTC(),
	}
	if err := s.cache.StoreLastResume(ctx, rec); err != nil {
		s.logger.Warn("store last resume failed", slog.String("error", err.Error()))
		return res, nil
	}
	if err := s.cache.NotifyResumeUpdated(ctx); err != nil {
		s.logger.Warn("resume updated signal failed", slog.String("error", err.Error()))
	}
	return res, nil
}

// Graph returns the backend graph of person.
func (s *Service) Graph(ctx context.Context, person string) (*models.GraphData, error) {
	if strings.TrimSpace(person) == "" {
		return nil, fmt.Errorf("resumes: empty person name: %w", apperr.ErrInvalid)
	}
	return s.backend.ResumeGraph(ctx, person)
}

// RawGraph returns the backend's raw node and edge lists for person.
func (s *Service) RawGraph(ctx context.Context, person string) (*models.RawGraph, error) {
	if strings.TrimSpace(person) == "" {
		return nil, fmt.Errorf("resumes: empty person name: %w", apperr.ErrInvalid)
	}
	return s.backend.ResumeGraphRaw(ctx, person)
}

// VisualGraph returns the graph of person mapped to nodes and edges.
func (s *Service) VisualGraph(ctx context.Context, person string) (*graphview.Graph, error) {
	data, err := s.Graph(ctx, person)
	if err != nil {
		return nil, err
	}
	return graphview.Map(data, s.opts)
}

// LastResume returns the cached resume or apperr.ErrNotFound.
func (s *Service) LastResume(ctx context.Context) (*models.LastResume, error) {
	return s.cache.LastResume(ctx)
}

// ClearLastResume forgets the cached resume and tells other processes
// sharing the state directory.
func (s *Service) ClearLastResume(ctx context.Context) error {
	if err := s.cache.ClearLastResume(ctx); err != nil {
		return err
	}
	if err := s.cache.NotifyResumeUpdated(ctx); err != nil {
		s.logger.Warn("resume updated signal failed", slog.String("error", err.Error()))
	}
	return nil
}

// SavedJobs lists the jobs saved against a resume.
func (s *Service) SavedJobs(ctx context.Context, resumeID string) (*models.SavedJobs, error) {
	return s.backend.SavedJobs(ctx, resumeID)
}

// DeleteSavedJob removes one saved job from a resume.
func (s *Service) DeleteSavedJob(ctx context.Context, resumeID, applyURL string) error {
	if applyURL == "" {
		return fmt.Errorf("resumes: empty apply url: %w", apperr.ErrInvalid)
	}
	return s.backend.DeleteSavedJob(ctx, resumeID, applyURL)
}
