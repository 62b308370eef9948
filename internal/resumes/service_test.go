package resumes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/careerlift/internal/apperr"
	"github.com/starford/careerlift/internal/graphview"
	"github.com/starford/careerlift/internal/localstore"
	"github.com/starford/careerlift/internal/models"
	"github.com/starford/careerlift/internal/testutil"
)

func newService(t *testing.T) (*Service, *testutil.FakeBackend, *localstore.Store) {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	store := testutil.TestStore(t)
	return NewService(fb.Client(), store, graphview.Options{}, nil), fb, store
}

func TestCheckFilename(t *testing.T) {
	for _, name := range []string{"cv.pdf", "CV.DOCX", "notes.md", "plain.txt", "old.doc"} {
		if err := CheckFilename(name); err != nil {
			t.Errorf("CheckFilename(%q) = %v, want nil", name, err)
		}
	}
	for _, name := range []string{"", "cv.exe", "cv", "photo.png"} {
		if err := CheckFilename(name); !errors.Is(err, apperr.ErrInvalid) {
			t.Errorf("CheckFilename(%q) = %v, want ErrInvalid", name, err)
		}
	}
}

func TestUploadCachesLastResume(t *testing.T) {
	svc, fb, store := newService(t)
	ctx := context.Background()

	res, err := svc.Upload(ctx, Upload{
		Filename:   "ada.pdf",
		Content:    strings.NewReader("Ada Lovelace\nEngineer"),
		PersonName: "Ada Lovelace",
		ResumeName: "Ada 2026",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.ResumeID == "" {
		t.Error("resume id missing")
	}
	if len(fb.Uploads) != 1 || fb.Uploads[0] != "ada.pdf" {
		t.Errorf("uploads = %v", fb.Uploads)
	}

	last, err := store.LastResume(ctx)
	if err != nil {
		t.Fatalf("LastResume: %v", err)
	}
	if last.PersonName != "Ada Lovelace" {
		t.Errorf("person = %q, want %q", last.PersonName, "Ada Lovelace")
	}
	if last.Filename != "ada.pdf" || last.TextLength != len("Ada Lovelace\nEngineer") {
		t.Errorf("last = %+v", last)
	}
	if last.StoredAt.IsZero() {
		t.Error("stored_at not set")
	}
	if _, err := store.Get(ctx, localstore.KeyResumeUpdated); err != nil {
		t.Errorf("resume-updated signal missing: %v", err)
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	svc, fb, _ := newService(t)
	_, err := svc.Upload(context.Background(), Upload{Filename: "virus.exe", Content: strings.NewReader("x")})
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if len(fb.Uploads) != 0 {
		t.Error("backend should not be called")
	}
}

func TestFind(t *testing.T) {
	svc, fb, _ := newService(t)
	fb.Resumes = []models.ResumeSummary{{ResumeID: "a"}, {ResumeID: "b", ResumeName: "B"}}

	got, err := svc.Find(context.Background(), "b")
	if err != nil {
		t.Fatal(err)
	}
	if got.ResumeName != "B" {
		t.Errorf("name = %q, want %q", got.ResumeName, "B")
	}
	if _, err := svc.Find(context.Background(), "zzz"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestVisualGraph(t *testing.T) {
	svc, fb, _ := newService(t)
	fb.Graphs["Grace"] = &models.GraphData{
		Person: models.Record{"name": "Grace"},
		Skills: []models.Text{models.PlainText("COBOL"), models.PlainText("Compilers")},
	}

	g, err := svc.VisualGraph(context.Background(), "Grace")
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Nodes) != 3 || len(g.Edges) != 2 {
		t.Errorf("nodes=%d edges=%d, want 3/2", len(g.Nodes), len(g.Edges))
	}
	if _, ok := g.Node("skill:COBOL"); !ok {
		t.Error("skill node missing")
	}

	if _, err := svc.VisualGraph(context.Background(), "Nobody"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Graph(context.Background(), "  "); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestRawGraph(t *testing.T) {
	svc, fb, _ := newService(t)
	fb.Graphs["Grace"] = &models.GraphData{Person: models.Record{"name": "Grace"}}

	raw, err := svc.RawGraph(context.Background(), "Grace")
	if err != nil {
		t.Fatal(err)
	}
	if len(raw.Nodes) != 1 || len(raw.Edges) != 0 {
		t.Errorf("raw = %d nodes, %d edges", len(raw.Nodes), len(raw.Edges))
	}
}

func TestSavedJobsRoundTrip(t *testing.T) {
	svc, fb, _ := newService(t)
	const u = "https://www.usajobs.gov/job/123?x=1"
	fb.Saved["r1"] = []models.SavedJob{{JobTitle: "Analyst", ApplyURL: u}}
	ctx := context.Background()

	saved, err := svc.SavedJobs(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if len(saved.Jobs) != 1 || saved.Jobs[0].ApplyURL != u {
		t.Fatalf("saved = %+v", saved)
	}

	if err := svc.DeleteSavedJob(ctx, "r1", u); err != nil {
		t.Fatalf("DeleteSavedJob: %v", err)
	}
	if len(fb.Deleted) != 1 || fb.Deleted[0] != u {
		t.Errorf("deleted = %v, want [%s]", fb.Deleted, u)
	}
	if err := svc.DeleteSavedJob(ctx, "r1", u); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteSavedJob(ctx, "r1", ""); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("empty url err = %v, want ErrInvalid", err)
	}
}

func TestClearLastResume(t *testing.T) {
	svc, _, store := newService(t)
	ctx := context.Background()

	if err := store.StoreLastResume(ctx, models.LastResume{PersonName: "Ada"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.ClearLastResume(ctx); err != nil {
		t.Fatalf("ClearLastResume: %v", err)
	}
	if _, err := svc.LastResume(ctx); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("LastResume after clear: err = %v", err)
	}
	if _, err := store.Get(ctx, localstore.KeyResumeUpdated); err != nil {
		t.Errorf("resume-updated signal missing: %v", err)
	}
}

func TestLastResumeMissing(t *testing.T) {
	svc, _, _ := newService(t)
	if _, err := svc.LastResume(context.Background()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
