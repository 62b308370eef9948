package api

import (
	"net/http"

	"github.com/starford/careerlift/internal/jobs"
	"github.com/starford/careerlift/internal/models"
	"github.com/starford/careerlift/internal/resumes"
)

const maxUploadBytes = 20 << 20

// ListResumes handles GET /api/resumes.
//
//	@Summary		List uploaded resumes
//	@Tags			resumes
//	@Produce		json
//	@Success		200	{object}	map[string][]models.ResumeSummary
//	@Security		BearerAuth
//	@Router			/resumes [get]
func (h *Handler) ListResumes(w http.ResponseWriter, r *http.Request) {
	list, err := h.resumes.List(r.Context())
	if err != nil {
		writeError(w, "list resumes", err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resumes": list})
}

// UploadResume handles POST /api/resumes (multipart/form-data, field "file").
//
//	@Summary		Upload and parse a resume
//	@Tags			resumes
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file	true	"Resume file"
//	@Param			person_name	formData	string	false	"Person name"
//	@Param			resume_name	formData	string	false	"Resume name"
//	@Success		201			{object}	models.UploadResult
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resumes [post]
func (h *Handler) UploadResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	form := UploadForm{PersonName: r.FormValue("person_name"), ResumeName: r.FormValue("resume_name")}
	if err := form.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	res, err := h.resumes.Upload(r.Context(), resumes.Upload{
		Filename:   header.Filename,
		Content:    file,
		PersonName: form.PersonName,
		ResumeName: form.ResumeName,
	})
	if err != nil {
		writeError(w, "upload resume", err, "")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// SelectResume handles PUT /api/resumes/selected.
//
//	@Summary		Select the resume used for ATS scoring
//	@Tags			resumes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SelectResumeRequest	true	"Resume id, empty to clear"
//	@Success		200		{object}	SelectResumeResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resumes/selected [put]
func (h *Handler) SelectResume(w http.ResponseWriter, r *http.Request) {
	var req SelectResumeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var selected *models.ResumeSummary
	if req.ResumeID != "" {
		found, err := h.resumes.Find(r.Context(), req.ResumeID)
		if err != nil {
			writeError(w, "select resume", err, "")
			return
		}
		selected = found
	}
	if err := h.jobs.SelectResume(r.Context(), selected); err != nil {
		writeError(w, "select resume", err, jobs.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, SelectResumeResponse{ResumeID: req.ResumeID})
}

// LastResume handles GET /api/resumes/last.
//
//	@Summary		Most recently viewed resume
//	@Tags			resumes
//	@Produce		json
//	@Success		200	{object}	models.LastResume
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resumes/last [get]
func (h *Handler) LastResume(w http.ResponseWriter, r *http.Request) {
	last, err := h.resumes.LastResume(r.Context())
	if err != nil {
		writeError(w, "last resume", err, "no resume viewed yet")
		return
	}
	writeJSON(w, http.StatusOK, last)
}

// ClearLastResume handles DELETE /api/resumes/last.
//
//	@Summary		Forget the most recently viewed resume
//	@Tags			resumes
//	@Success		204
//	@Security		BearerAuth
//	@Router			/resumes/last [delete]
func (h *Handler) ClearLastResume(w http.ResponseWriter, r *http.Request) {
	if err := h.resumes.ClearLastResume(r.Context()); err != nil {
		writeError(w, "clear last resume", err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResumeGraph handles GET /api/resumes/graph/{person}.
//
//	@Summary		Career graph of a person, mapped for display
//	@Tags			resumes
//	@Produce		json
//	@Param			person	path		string	true	"Person name"
//	@Success		200		{object}	graphview.Graph
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resumes/graph/{person} [get]
func (h *Handler) ResumeGraph(w http.ResponseWriter, r *http.Request) {
	g, err := h.resumes.VisualGraph(r.Context(), pathParam(r, "person"))
	if err != nil {
		writeError(w, "resume graph", err, "")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// ResumeGraphRaw handles GET /api/resumes/graph/{person}/raw.
//
//	@Summary		Backend node and edge lists of a person
//	@Tags			resumes
//	@Produce		json
//	@Param			person	path		string	true	"Person name"
//	@Success		200		{object}	models.RawGraph
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resumes/graph/{person}/raw [get]
func (h *Handler) ResumeGraphRaw(w http.ResponseWriter, r *http.Request) {
	raw, err := h.resumes.RawGraph(r.Context(), pathParam(r, "person"))
	if err != nil {
		writeError(w, "raw resume graph", err, "")
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

// GraphNode handles GET /api/resumes/graph/{person}/nodes/*.
//
//	@Summary		Properties of one graph node
//	@Tags			resumes
//	@Produce		json
//	@Param			person	path		string	true	"Person name"
//	@Param			id		path		string	true	"Node id"
//	@Success		200		{object}	graphview.Node
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resumes/graph/{person}/nodes/{id} [get]
func (h *Handler) GraphNode(w http.ResponseWriter, r *http.Request) {
	g, err := h.resumes.VisualGraph(r.Context(), pathParam(r, "person"))
	if err != nil {
		writeError(w, "graph node", err, "")
		return
	}
	node, ok := g.Node(pathParam(r, "*"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("node not found"))
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// SavedJobs handles GET /api/resumes/{id}/saved-jobs.
//
//	@Summary		Jobs saved against a resume
//	@Tags			resumes
//	@Produce		json
//	@Param			id	path		string	true	"Resume id"
//	@Success		200	{object}	models.SavedJobs
//	@Security		BearerAuth
//	@Router			/resumes/{id}/saved-jobs [get]
func (h *Handler) SavedJobs(w http.ResponseWriter, r *http.Request) {
	saved, err := h.resumes.SavedJobs(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeError(w, "saved jobs", err, "")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteSavedJob handles DELETE /api/resumes/{id}/saved-jobs?url=.
//
//	@Summary		Remove a saved job from a resume
//	@Tags			resumes
//	@Param			id	path	string	true	"Resume id"
//	@Param			url	query	string	true	"Apply URL"
//	@Success		204	"Saved job removed"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resumes/{id}/saved-jobs [delete]
func (h *Handler) DeleteSavedJob(w http.ResponseWriter, r *http.Request) {
	applyURL := r.URL.Query().Get("url")
	if applyURL == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'url' is required"))
		return
	}
	if err := h.resumes.DeleteSavedJob(r.Context(), pathParam(r, "id"), applyURL); err != nil {
		writeError(w, "delete saved job", err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
