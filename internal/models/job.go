// Package models defines the domain types shared by the CareerLift packages.
package models

import (
	"encoding/json"
	"math"
)

// JobListing is a single posting returned by a job source.
type JobListing struct {
	Title          string `json:"title"`
	Company        string `json:"company,omitempty"`
	Location       string `json:"location,omitempty"`
	EmploymentType string `json:"employment_type,omitempty"`
	Remote         bool   `json:"remote"`
	SalaryText     string `json:"salary_text,omitempty"`
	PostedAt       string `json:"posted_at,omitempty"`
	ApplyURL       string `json:"apply_url,omitempty"`
	SourceURL      string `json:"source_url,omitempty"`
	Description    string `json:"description,omitempty"`
	Source         string `json:"source,omitempty"`
	SourceJobID    string `json:"source_job_id,omitempty"`
	ATSScore       *Score `json:"ats_score,omitempty"`
}

// URL returns the key used to identify the listing: the apply URL, falling
// back to the source URL.
func (j JobListing) URL() string {
	if j.ApplyURL != "" {
		return j.ApplyURL
	}
	return j.SourceURL
}

// Score is an ATS match score in [0, 100].
type Score int

// NewScore clamps v into range.
func NewScore(v int) *Score {
	s := Score(min(max(v, 0), 100))
	return &s
}

// UnmarshalJSON accepts integral and fractional numbers; fractions are rounded.
func (s *Score) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = *NewScore(int(math.Round(f)))
	return nil
}
