package models

import (
	"encoding/json"
	"time"
)

// ResumeSummary describes one uploaded resume.
type ResumeSummary struct {
	ResumeID   string `json:"resume_id"`
	ResumeName string `json:"resume_name"`
	PersonName Text   `json:"person_name"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// Record is an opaque property bag as delivered by the graph backend.
type Record map[string]any

// Text returns the normalized display string stored under key.
func (r Record) Text(key string) string {
	if r == nil {
		return ""
	}
	return TextOf(r[key]).String()
}

// First returns the first non-empty normalized value among keys.
func (r Record) First(keys ...string) string {
	for _, k := range keys {
		if s := r.Text(k); s != "" {
			return s
		}
	}
	return ""
}

// GraphData is a person's career subgraph.
type GraphData struct {
	Person      Record   `json:"person"`
	Skills      []Text   `json:"skills"`
	Experiences []Record `json:"experiences"`
	Education   []Record `json:"education"`
	SavedJobs   []Record `json:"saved_jobs,omitempty"`
	Resumes     []Record `json:"resumes,omitempty"`
}

// PersonName returns the normalized person name.
func (g *GraphData) PersonName() string {
	return g.Person.Text("name")
}

// UploadResult is returned by the backend after a resume upload.
type UploadResult struct {
	Message      string     `json:"message"`
	ResumeID     string     `json:"resume_id"`
	ResumeName   string     `json:"resume_name"`
	PersonName   Text       `json:"person_name"`
	Filename     string     `json:"filename"`
	TextLength   int        `json:"text_length"`
	NodesCreated int        `json:"nodes_created"`
	GraphData    *GraphData `json:"graph_data"`
}

// LastResume is the locally cached copy of the most recently viewed resume.
type LastResume struct {
	Filename     string     `json:"filename"`
	TextLength   int        `json:"text_length"`
	GraphData    *GraphData `json:"graph_data"`
	NodesCreated int        `json:"nodes_created"`
	PersonName   string     `json:"person_name"`
	ResumeName   string     `json:"resume_name"`
	StoredAt     time.Time  `json:"stored_at"`
}

// SavedJob is a job saved against a resume.
type SavedJob struct {
	JobTitle string `json:"job_title"`
	Company  string `json:"company,omitempty"`
	Location string `json:"location,omitempty"`
	ApplyURL string `json:"apply_url"`
	Source   string `json:"source,omitempty"`
	SavedAt  string `json:"saved_at,omitempty"`
	Notes    string `json:"notes,omitempty"`
	ATSScore *Score `json:"ats_score,omitempty"`
}

// SavedJobs lists the jobs saved against one resume.
type SavedJobs struct {
	ResumeID   string     `json:"resume_id"`
	ResumeName string     `json:"resume_name"`
	Jobs       []SavedJob `json:"jobs"`
}

// RawGraph is the backend's own node/edge rendering of a subgraph.
type RawGraph struct {
	Nodes []json.RawMessage `json:"nodes"`
	Edges []json.RawMessage `json:"edges"`
}
