package api

import (
	"net/http"

	"github.com/starford/careerlift/internal/sections"
)

// DetectSections handles POST /api/sections/detect.
//
//	@Summary		Detect section regions on a resume page
//	@Tags			sections
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DetectRequest	true	"Page text fragments"
//	@Success		200		{object}	DetectResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sections/detect [post]
func (h *Handler) DetectSections(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	regions := sections.Detect(req.Fragments, req.PageHeight, req.Page)
	if regions == nil {
		regions = []sections.Region{}
	}
	writeJSON(w, http.StatusOK, DetectResponse{Regions: regions})
}

// LookupSection handles POST /api/sections/lookup.
//
//	@Summary		Section containing a point
//	@Tags			sections
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LookupRequest	true	"Regions and point"
//	@Success		200		{object}	LookupResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sections/lookup [post]
func (h *Handler) LookupSection(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	key, ok := sections.FindAt(req.Regions, req.Y, req.Page)
	writeJSON(w, http.StatusOK, LookupResponse{Found: ok, Key: key})
}
