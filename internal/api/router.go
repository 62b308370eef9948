package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/careerlift/internal/jobs"
	"github.com/starford/careerlift/internal/resumes"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(ctrl *jobs.Controller, svc *resumes.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(ctrl, svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.Jobs)
		r.Post("/search", h.Search)
		r.Post("/graph", h.AddToGraph)
		r.Post("/{source}/refresh", h.RefreshSource)
		r.Post("/{source}/more", h.LoadMore)
	})

	r.Route("/resumes", func(r chi.Router) {
		r.Get("/", h.ListResumes)
		r.Post("/", h.UploadResume)
		r.Put("/selected", h.SelectResume)
		r.Get("/last", h.LastResume)
		r.Delete("/last", h.ClearLastResume)
		r.Get("/graph/{person}", h.ResumeGraph)
		r.Get("/graph/{person}/raw", h.ResumeGraphRaw)
		r.Get("/graph/{person}/resume-data", h.ResumeData)
		r.Get("/graph/{person}/nodes/*", h.GraphNode)
		r.Get("/{id}/saved-jobs", h.SavedJobs)
		r.Delete("/{id}/saved-jobs", h.DeleteSavedJob)
	})

	r.Route("/latex", func(r chi.Router) {
		r.Get("/templates", h.LatexTemplates)
		r.Post("/compile", h.CompileLatex)
		r.Post("/compile/preview", h.PreviewLatex)
	})

	r.Post("/sections/detect", h.DetectSections)
	r.Post("/sections/lookup", h.LookupSection)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
