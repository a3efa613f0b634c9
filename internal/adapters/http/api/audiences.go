package api

import "net/http"

// AudienceHandler lists audience profiles.
type AudienceHandler struct {
	deps Dependencies
}

// NewAudienceHandler creates a new audience handler.
func NewAudienceHandler(deps Dependencies) *AudienceHandler {
	return &AudienceHandler{deps: deps}
}

// HandleList handles GET /api/audiences.
func (h *AudienceHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Audiences())
}
