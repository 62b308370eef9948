package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/careerlift/internal/models"
	"github.com/starford/careerlift/internal/resumes"
	"github.com/starford/careerlift/internal/sections"
)

const maxQueryLen = 200

// SearchRequest is the request body for a job search.
type SearchRequest struct {
	Keyword  string `json:"keyword" example:"software engineer"`
	Location string `json:"location" example:"Remote"`
}

// Validate checks the search filters.
func (r *SearchRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Keyword, validation.Length(0, maxQueryLen)),
		validation.Field(&r.Location, validation.Length(0, maxQueryLen)),
	)
}

// SelectResumeRequest picks the active resume. An empty id clears it.
type SelectResumeRequest struct {
	ResumeID string `json:"resume_id" example:"6f1c..."`
}

// Validate checks the resume id.
func (r *SelectResumeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ResumeID, validation.Length(0, 128)),
	)
}

// AddToGraphResponse is returned after a job was added to the graph.
type AddToGraphResponse struct {
	Added bool   `json:"added" validate:"required"`
	URL   string `json:"url" example:"https://www.usajobs.gov/job/1" validate:"required"`
}

// SelectResumeResponse echoes the active resume id.
type SelectResumeResponse struct {
	ResumeID string `json:"resume_id"`
}

// DetectRequest is the request body for section detection.
type DetectRequest struct {
	Page       int                 `json:"page" example:"0"`
	PageHeight float64             `json:"page_height" example:"792"`
	Fragments  []sections.Fragment `json:"fragments" validate:"required"`
}

// Validate checks the page geometry.
func (r *DetectRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Page, validation.Min(0)),
		validation.Field(&r.PageHeight, validation.Required, validation.Min(0.0).Exclusive()),
	)
}

// DetectResponse lists the detected regions, top to bottom.
type DetectResponse struct {
	Regions []sections.Region `json:"regions" validate:"required"`
}

// LookupRequest asks which region contains a point.
type LookupRequest struct {
	Regions []sections.Region `json:"regions" validate:"required"`
	Y       float64           `json:"y" example:"640"`
	Page    int               `json:"page" example:"0"`
}

// Validate checks the lookup point.
func (r *LookupRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Page, validation.Min(0)),
	)
}

// LookupResponse names the section at a point, if any.
type LookupResponse struct {
	Found bool         `json:"found"`
	Key   sections.Key `json:"key,omitempty"`
}

// UploadForm holds the text fields of a resume upload.
type UploadForm struct {
	PersonName string
	ResumeName string
}

// Validate checks the optional names.
func (f *UploadForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.PersonName, validation.Length(0, maxQueryLen)),
		validation.Field(&f.ResumeName, validation.Length(0, maxQueryLen)),
	)
}

// CompileForm is the request body of the LaTeX compile endpoints.
type CompileForm struct {
	TemplateID string            `json:"template_id" example:"template1"`
	ResumeData models.ResumeData `json:"resume_data"`
}

// Validate checks the template id.
func (f *CompileForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.TemplateID, validation.Required, validation.Length(1, 128)),
	)
}

// PreviewQuery holds the page and resolution of a preview render.
type PreviewQuery struct {
	Page int
	DPI  int
}

// Validate checks the page index and resolution. A zero dpi selects the default.
func (q *PreviewQuery) Validate() error {
	return validation.ValidateStruct(q,
		validation.Field(&q.Page, validation.Min(0)),
		validation.Field(&q.DPI, validation.Min(0), validation.Max(resumes.MaxPreviewDPI)),
	)
}

// TemplatesResponse lists the LaTeX templates.
type TemplatesResponse struct {
	Templates []models.TemplateInfo `json:"templates" validate:"required"`
}
