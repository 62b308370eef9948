package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/careerlift/internal/apperr"
	"github.com/starford/careerlift/internal/models"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 5*time.Second)
}

func TestFetchLive_QueryAndDecode(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs/fetch-live/adzuna" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("keyword") != "go" || q.Get("location") != "Berlin" || q.Get("limit") != "200" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"jobs":[{"title":"Go dev","apply_url":"https://x/1","remote":true}],"count":1,"source":"adzuna"}`)
	})

	res, err := c.FetchLive(context.Background(), FetchRequest{Source: "adzuna", Keyword: "go", Location: "Berlin", Limit: 200})
	if err != nil {
		t.Fatalf("FetchLive: %v", err)
	}
	if len(res.Jobs) != 1 || res.Jobs[0].Title != "Go dev" || !res.Jobs[0].Remote {
		t.Errorf("jobs = %+v", res.Jobs)
	}
}

func TestFetchLive_NotConfiguredReturnsEmpty(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"jobs":[],"message":"Adzuna API not configured"}`)
	})
	res, err := c.FetchLive(context.Background(), FetchRequest{Source: "adzuna"})
	if err != nil {
		t.Fatalf("FetchLive: %v", err)
	}
	if len(res.Jobs) != 0 || res.Message == "" {
		t.Errorf("res = %+v", res)
	}
}

func TestFetchLive_ErrorBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":"Unknown source: foo"}`)
	})
	_, err := c.FetchLive(context.Background(), FetchRequest{Source: "foo"})
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestStatusErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusNotFound, `{"detail":"Person 'x' not found"}`, apperr.ErrNotFound},
		{http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"}]}`, apperr.ErrInvalid},
		{http.StatusInternalServerError, `boom`, apperr.ErrUpstream},
	}
	for _, tc := range cases {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = io.WriteString(w, tc.body)
		})
		_, err := c.ResumeGraph(context.Background(), "x")
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: err = %v, want %v", tc.status, err, tc.want)
		}
		if !IsStatus(err, tc.status) {
			t.Errorf("status %d: IsStatus false", tc.status)
		}
	}
}

func TestErrorDetail(t *testing.T) {
	if got := errorDetail([]byte(`{"detail":"Resume not found"}`)); got != "Resume not found" {
		t.Errorf("detail = %q", got)
	}
	if got := errorDetail([]byte(`plain text`)); got != "plain text" {
		t.Errorf("detail = %q", got)
	}
}

func TestCalculateATS_Body(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Jobs     []models.JobListing `json:"jobs"`
			ResumeID string              `json:"resume_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.ResumeID != "r1" || len(body.Jobs) != 2 {
			t.Errorf("body = %+v", body)
		}
		for i := range body.Jobs {
			body.Jobs[i].ATSScore = models.NewScore(50 + i)
		}
		_ = json.NewEncoder(w).Encode(body.Jobs)
	})

	out, err := c.CalculateATS(context.Background(), []models.JobListing{{Title: "a"}, {Title: "b"}}, "r1")
	if err != nil {
		t.Fatalf("CalculateATS: %v", err)
	}
	if len(out) != 2 || out[1].ATSScore == nil || *out[1].ATSScore != 51 {
		t.Errorf("out = %+v", out)
	}
}

func TestRefresh(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Query().Get("limit_per_source") != "100" {
			t.Errorf("request = %s %s", r.Method, r.URL)
		}
		_, _ = io.WriteString(w, `{"total_fetched":7,"by_source":{"remotive":7},"limit_per_source":100}`)
	})
	res, err := c.Refresh(context.Background(), 100)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if res.TotalFetched != 7 || res.BySource["remotive"] != 7 {
		t.Errorf("res = %+v", res)
	}
}

func TestSaveJob_SendsEmptyNotes(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(raw), `"notes":""`) {
			t.Errorf("body = %s", raw)
		}
		_, _ = io.WriteString(w, `{"message":"Job saved successfully"}`)
	})
	if err := c.SaveJob(context.Background(), SaveJobRequest{ResumeID: "r1", JobApplyURL: "https://x/1"}); err != nil {
		t.Fatalf("SaveJob: %v", err)
	}
}

func TestUploadResume_Multipart(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "cv.txt" || string(data) != "hello" {
			t.Errorf("file = %q %q", hdr.Filename, data)
		}
		if r.FormValue("person_name") != "Ada" {
			t.Errorf("person_name = %q", r.FormValue("person_name"))
		}
		_, _ = io.WriteString(w, `{"message":"ok","resume_id":"r1","person_name":"Ada","filename":"cv.txt","text_length":5,"nodes_created":3,"graph_data":{"person":{"name":"Ada"},"skills":["Go"]}}`)
	})

	res, err := c.UploadResume(context.Background(), UploadRequest{Filename: "cv.txt", Content: strings.NewReader("hello"), PersonName: "Ada"})
	if err != nil {
		t.Fatalf("UploadResume: %v", err)
	}
	if res.ResumeID != "r1" || res.GraphData == nil || res.GraphData.PersonName() != "Ada" {
		t.Errorf("res = %+v", res)
	}
}

func TestDeleteSavedJob_EscapesURL(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		if !strings.HasPrefix(r.URL.Path, "/api/resume/saved-job/r1/") || !strings.HasSuffix(r.URL.Path, "https://x.io/jobs/1") {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"message":"Job removed from saved list"}`)
	})
	if err := c.DeleteSavedJob(context.Background(), "r1", "https://x.io/jobs/1"); err != nil {
		t.Fatalf("DeleteSavedJob: %v", err)
	}
}
