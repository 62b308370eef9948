package api

import (
	"net/http"
	"strconv"

	"github.com/starford/careerlift/internal/models"
)

// LatexTemplates handles GET /api/latex/templates.
//
//	@Summary		LaTeX resume templates
//	@Tags			latex
//	@Produce		json
//	@Success		200	{object}	TemplatesResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/latex/templates [get]
func (h *Handler) LatexTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := h.resumes.Templates(r.Context())
	if err != nil {
		writeError(w, "latex templates", err, "")
		return
	}
	if list == nil {
		list = []models.TemplateInfo{}
	}
	writeJSON(w, http.StatusOK, TemplatesResponse{Templates: list})
}

// CompileLatex handles POST /api/latex/compile.
//
//	@Summary		Compile a resume document to PDF
//	@Tags			latex
//	@Accept			json
//	@Produce		application/pdf
//	@Param			body	body		CompileForm	true	"Template and document"
//	@Success		200		{file}		binary
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/latex/compile [post]
func (h *Handler) CompileLatex(w http.ResponseWriter, r *http.Request) {
	var form CompileForm
	if !decodeJSON(w, r, &form) {
		return
	}
	pdf, err := h.resumes.Compile(r.Context(), models.CompileRequest(form))
	if err != nil {
		writeError(w, "compile latex", err, "")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=resume.pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// PreviewLatex handles POST /api/latex/compile/preview?page=&dpi=.
//
//	@Summary		Render one page of a resume document as PNG
//	@Tags			latex
//	@Accept			json
//	@Produce		image/png
//	@Param			body	body		CompileForm	true	"Template and document"
//	@Param			page	query		int			false	"Zero-based page"
//	@Param			dpi		query		int			false	"Resolution, default 150"
//	@Success		200		{file}		binary
//	@Header			200		{integer}	X-Page-Count	"Total pages"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/latex/compile/preview [post]
func (h *Handler) PreviewLatex(w http.ResponseWriter, r *http.Request) {
	q, ok := previewQuery(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("page and dpi must be integers"))
		return
	}
	if err := q.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	var form CompileForm
	if !decodeJSON(w, r, &form) {
		return
	}
	p, err := h.resumes.Preview(r.Context(), models.CompileRequest(form), q.Page, q.DPI)
	if err != nil {
		writeError(w, "preview latex", err, "")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Page-Count", strconv.Itoa(p.PageCount))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(p.PNG)
}

// ResumeData handles GET /api/resumes/graph/{person}/resume-data.
//
//	@Summary		Editor document seeded from a career graph
//	@Tags			latex
//	@Produce		json
//	@Param			person	path		string	true	"Person name"
//	@Success		200		{object}	models.ResumeData
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resumes/graph/{person}/resume-data [get]
func (h *Handler) ResumeData(w http.ResponseWriter, r *http.Request) {
	data, err := h.resumes.ResumeData(r.Context(), pathParam(r, "person"))
	if err != nil {
		writeError(w, "resume data", err, "")
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func previewQuery(r *http.Request) (PreviewQuery, bool) {
	var q PreviewQuery
	for name, dst := range map[string]*int{"page": &q.Page, "dpi": &q.DPI} {
		v := r.URL.Query().Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, false
		}
		*dst = n
	}
	return q, true
}
