package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/careerlift/internal/jobs"
	"github.com/starford/careerlift/internal/models"
	"github.com/starford/careerlift/internal/resumes"
)

// Handler holds API route handlers.
type Handler struct {
	jobs    *jobs.Controller
	resumes *resumes.Service
}

// NewHandler creates a new Handler.
func NewHandler(ctrl *jobs.Controller, svc *resumes.Service) *Handler {
	return &Handler{jobs: ctrl, resumes: svc}
}

// pathParam returns a URL parameter, decoding escaped slashes.
func pathParam(r *http.Request, name string) string {
	raw := strings.TrimPrefix(chi.URLParam(r, name), "/")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Jobs handles GET /api/jobs.
//
//	@Summary		Current listings and per-source state
//	@Tags			jobs
//	@Produce		json
//	@Success		200	{object}	jobs.Snapshot
//	@Security		BearerAuth
//	@Router			/jobs [get]
func (h *Handler) Jobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.jobs.Snapshot())
}

// Search handles POST /api/jobs/search.
//
//	@Summary		Search every source in order
//	@Tags			jobs
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SearchRequest	true	"Search filters"
//	@Success		200		{object}	jobs.Snapshot
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/jobs/search [post]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	q := jobs.Query{Keyword: strings.TrimSpace(req.Keyword), Location: strings.TrimSpace(req.Location)}
	if err := h.jobs.Search(r.Context(), q); err != nil {
		writeError(w, "search", err, jobs.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, h.jobs.Snapshot())
}

// RefreshSource handles POST /api/jobs/{source}/refresh.
//
//	@Summary		Refetch one source at the default page size
//	@Tags			jobs
//	@Produce		json
//	@Param			source	path		string	true	"Source"	Enums(usajobs, adzuna, remotive, weworkremotely)
//	@Success		200		{object}	jobs.Snapshot
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/jobs/{source}/refresh [post]
func (h *Handler) RefreshSource(w http.ResponseWriter, r *http.Request) {
	src, err := jobs.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		writeError(w, "refresh", err, "")
		return
	}
	if err := h.jobs.RefreshSource(r.Context(), src); err != nil {
		writeError(w, "refresh", err, jobs.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, h.jobs.Snapshot())
}

// LoadMore handles POST /api/jobs/{source}/more.
//
//	@Summary		Fetch the next page of one source
//	@Tags			jobs
//	@Produce		json
//	@Param			source	path		string	true	"Source"	Enums(usajobs, adzuna, remotive, weworkremotely)
//	@Success		200		{object}	jobs.Snapshot
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/jobs/{source}/more [post]
func (h *Handler) LoadMore(w http.ResponseWriter, r *http.Request) {
	src, err := jobs.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		writeError(w, "load more", err, "")
		return
	}
	if err := h.jobs.LoadMore(r.Context(), src); err != nil {
		writeError(w, "load more", err, jobs.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, h.jobs.Snapshot())
}

// AddToGraph handles POST /api/jobs/graph.
//
//	@Summary		Add a listing to the knowledge graph
//	@Tags			jobs
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.JobListing	true	"Listing"
//	@Success		200		{object}	AddToGraphResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/jobs/graph [post]
func (h *Handler) AddToGraph(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	var job models.JobListing
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if job.URL() == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(jobs.MsgMissingURL))
		return
	}
	if err := h.jobs.AddToGraph(r.Context(), job); err != nil {
		writeError(w, "add to graph", err, "")
		return
	}
	writeJSON(w, http.StatusOK, AddToGraphResponse{Added: true, URL: job.URL()})
}
