// Package testutil provides shared test helpers: a throwaway local store and
// an in-process fake of the CareerLift backend.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/starford/careerlift/internal/backend"
	"github.com/starford/careerlift/internal/localstore"
	"github.com/starford/careerlift/internal/models"
)

// TestStore creates a temporary local store that is automatically cleaned up.
func TestStore(t *testing.T) *localstore.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "careerlift-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	s, err := localstore.Open(dbFile.Name(), filepath.Join(t.TempDir(), "signals"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// FakeBackend serves canned responses for every backend endpoint. Exported
// fields may be changed between requests while holding Mu.
type FakeBackend struct {
	Mu sync.Mutex
	// Jobs holds the full listing set per source; fetch-live truncates it to
	// the requested limit.
	Jobs    map[string][]models.JobListing
	Resumes []models.ResumeSummary
	Graphs  map[string]*models.GraphData
	Saved   map[string][]models.SavedJob
	// FailSource makes fetch-live for that source answer 502.
	FailSource string

	// Templates is served by the LaTeX endpoints; compiling an unknown
	// template id answers 400.
	Templates []models.TemplateInfo
	// PageCount is reported in X-Page-Count by the preview endpoint.
	PageCount int

	Uploads   []string
	Added     []string
	Deleted   []string
	Refreshes []int
	Compiled  []models.CompileRequest

	Server *httptest.Server
}

// NewFakeBackend starts a fake backend that is closed with the test.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	f := &FakeBackend{
		Jobs:   map[string][]models.JobListing{},
		Graphs: map[string]*models.GraphData{},
		Saved:  map[string][]models.SavedJob{},
		Templates: []models.TemplateInfo{{
			ID:                "template1",
			Name:              "Classic Academic",
			Engine:            "pdflatex",
			SupportedSections: []string{"education", "awards", "experiences", "skills", "projects", "leadership"},
		}},
		PageCount: 1,
	}
	f.Server = httptest.NewServer(f.routes())
	t.Cleanup(f.Server.Close)
	return f
}

// Client returns a backend client pointed at the fake.
func (f *FakeBackend) Client() *backend.Client {
	return backend.NewClientWithHTTP(f.Server.URL, f.Server.Client())
}

func (f *FakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/jobs/fetch-live/{source}", f.fetchLive)
	r.Post("/jobs/calculate-ats", f.calculateATS)
	r.Post("/jobs/refresh", f.refresh)
	r.Post("/jobs/add-to-graph", f.addToGraph)
	r.Get("/api/resume/list", f.listResumes)
	r.Post("/api/resume/upload", f.upload)
	r.Get("/api/resume/graph/raw/{person}", f.rawGraph)
	r.Get("/api/resume/graph/{person}", f.graph)
	r.Post("/api/resume/save-job", f.saveJob)
	r.Get("/api/resume/saved-jobs/{id}", f.savedJobs)
	r.Delete("/api/resume/saved-job/{id}/*", f.deleteSavedJob)
	r.Get("/api/latex/templates", f.latexTemplates)
	r.Post("/api/latex/compile", f.compile)
	r.Post("/api/latex/compile/preview", f.compilePreview)
	return r
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func param(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func (f *FakeBackend) fetchLive(w http.ResponseWriter, r *http.Request) {
	src := param(r, "source")
	f.Mu.Lock()
	defer f.Mu.Unlock()
	if src == f.FailSource {
		reply(w, http.StatusBadGateway, map[string]string{"detail": src + " unavailable"})
		return
	}
	jobs := f.Jobs[src]
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n < len(jobs) {
		jobs = jobs[:n]
	}
	if jobs == nil {
		jobs = []models.JobListing{}
	}
	reply(w, http.StatusOK, map[string]any{"jobs": jobs, "count": len(jobs), "source": src})
}

func (f *FakeBackend) calculateATS(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Jobs     []models.JobListing `json:"jobs"`
		ResumeID string              `json:"resume_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		reply(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	for i := range in.Jobs {
		in.Jobs[i].ATSScore = models.NewScore(80)
	}
	reply(w, http.StatusOK, in.Jobs)
}

func (f *FakeBackend) refresh(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit_per_source"))
	f.Mu.Lock()
	defer f.Mu.Unlock()
	f.Refreshes = append(f.Refreshes, limit)
	by := map[string]int{}
	total := 0
	for src, jobs := range f.Jobs {
		n := min(len(jobs), limit)
		by[src] = n
		total += n
	}
	reply(w, http.StatusOK, backend.RefreshResult{TotalFetched: total, BySource: by, LimitPerSource: limit})
}

func (f *FakeBackend) addToGraph(w http.ResponseWriter, r *http.Request) {
	var job models.JobListing
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		reply(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	f.Mu.Lock()
	f.Added = append(f.Added, job.URL())
	f.Mu.Unlock()
	reply(w, http.StatusOK, backend.AddResult{Success: true, Message: "added", Job: &job})
}

func (f *FakeBackend) listResumes(w http.ResponseWriter, _ *http.Request) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	reply(w, http.StatusOK, map[string]any{"resumes": f.Resumes})
}

func (f *FakeBackend) upload(w http.ResponseWriter, r *http.Request) {
	file, hdr, err := r.FormFile("file")
	if err != nil {
		reply(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}
	defer file.Close()
	body, _ := io.ReadAll(file)
	person := r.FormValue("person_name")

	f.Mu.Lock()
	defer f.Mu.Unlock()
	f.Uploads = append(f.Uploads, hdr.Filename)
	id := "r" + strconv.Itoa(len(f.Uploads))
	graph := &models.GraphData{Person: models.Record{"name": person}}
	f.Graphs[person] = graph
	f.Resumes = append(f.Resumes, models.ResumeSummary{
		ResumeID:   id,
		ResumeName: r.FormValue("resume_name"),
		PersonName: models.PlainText(person),
	})
	reply(w, http.StatusOK, models.UploadResult{
		Message:      "Resume uploaded",
		ResumeID:     id,
		ResumeName:   r.FormValue("resume_name"),
		PersonName:   models.PlainText(person),
		Filename:     hdr.Filename,
		TextLength:   len(body),
		NodesCreated: 1,
		GraphData:    graph,
	})
}

func (f *FakeBackend) graph(w http.ResponseWriter, r *http.Request) {
	person := param(r, "person")
	f.Mu.Lock()
	defer f.Mu.Unlock()
	g, ok := f.Graphs[person]
	if !ok {
		reply(w, http.StatusNotFound, map[string]string{"detail": "Person not found"})
		return
	}
	reply(w, http.StatusOK, g)
}

func (f *FakeBackend) rawGraph(w http.ResponseWriter, r *http.Request) {
	person := param(r, "person")
	f.Mu.Lock()
	defer f.Mu.Unlock()
	if _, ok := f.Graphs[person]; !ok {
		reply(w, http.StatusNotFound, map[string]string{"detail": "Person not found"})
		return
	}
	reply(w, http.StatusOK, map[string]any{
		"nodes": []map[string]any{{"id": 1, "labels": []string{"Person"}, "properties": map[string]string{"name": person}}},
		"edges": []map[string]any{},
	})
}

func (f *FakeBackend) saveJob(w http.ResponseWriter, r *http.Request) {
	var in backend.SaveJobRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		reply(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	f.Mu.Lock()
	defer f.Mu.Unlock()
	f.Saved[in.ResumeID] = append(f.Saved[in.ResumeID], models.SavedJob{ApplyURL: in.JobApplyURL, Notes: in.Notes})
	reply(w, http.StatusOK, map[string]string{"message": "saved"})
}

func (f *FakeBackend) savedJobs(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	f.Mu.Lock()
	defer f.Mu.Unlock()
	jobs := f.Saved[id]
	if jobs == nil {
		jobs = []models.SavedJob{}
	}
	reply(w, http.StatusOK, models.SavedJobs{ResumeID: id, Jobs: jobs})
}

func (f *FakeBackend) deleteSavedJob(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	applyURL := param(r, "*")
	f.Mu.Lock()
	defer f.Mu.Unlock()
	jobs := f.Saved[id]
	for i, j := range jobs {
		if j.ApplyURL == applyURL {
			f.Saved[id] = append(jobs[:i:i], jobs[i+1:]...)
			f.Deleted = append(f.Deleted, applyURL)
			reply(w, http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
	}
	reply(w, http.StatusNotFound, map[string]string{"detail": "Saved job not found"})
}

func (f *FakeBackend) latexTemplates(w http.ResponseWriter, _ *http.Request) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	reply(w, http.StatusOK, f.Templates)
}

// decodeCompile records the request and reports whether its template exists.
func (f *FakeBackend) decodeCompile(w http.ResponseWriter, r *http.Request) bool {
	var in models.CompileRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		reply(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return false
	}
	f.Mu.Lock()
	defer f.Mu.Unlock()
	f.Compiled = append(f.Compiled, in)
	for _, t := range f.Templates {
		if t.ID == in.TemplateID {
			return true
		}
	}
	reply(w, http.StatusBadRequest, map[string]string{"detail": "Unknown template: " + in.TemplateID})
	return false
}

func (f *FakeBackend) compile(w http.ResponseWriter, r *http.Request) {
	if !f.decodeCompile(w, r) {
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	_, _ = io.WriteString(w, FakePDF)
}

func (f *FakeBackend) compilePreview(w http.ResponseWriter, r *http.Request) {
	if !f.decodeCompile(w, r) {
		return
	}
	f.Mu.Lock()
	pages := f.PageCount
	f.Mu.Unlock()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Page-Count", strconv.Itoa(pages))
	_, _ = io.WriteString(w, FakePNG)
}

// Bodies returned by the fake compile endpoints.
const (
	FakePDF = "%PDF-1.5 fake"
	FakePNG = "\x89PNG fake"
)
