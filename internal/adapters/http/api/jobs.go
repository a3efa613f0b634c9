package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/attnrisk/internal/adapters/repository"
	"github.com/okian/attnrisk/internal/domain/model"
)

// JobsHandler serves job status and results.
type JobsHandler struct {
	deps Dependencies
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps Dependencies) *JobsHandler {
	return &JobsHandler{deps: deps}
}

type statusResponse struct {
	Status   model.Status `json:"status"`
	Progress int          `json:"progress"`
	Error    string       `json:"error,omitempty"`
}

type failedResponse struct {
	Status model.Status `json:"status"`
	Error  string       `json:"error"`
}

// HandleStatus handles GET /api/status/{id}.
func (h *JobsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: job.Status, Progress: job.Progress, Error: job.Error})
}

// HandleResult handles GET /api/result/{id}. With ?audience= it returns the
// audience fit instead of the full result.
func (h *JobsHandler) HandleResult(w http.ResponseWriter, r *http.Request) {
	job, ok := h.lookup(w, r)
	if !ok {
		return
	}

	switch job.Status {
	case model.StatusFailed:
		writeJSON(w, http.StatusOK, failedResponse{Status: job.Status, Error: job.Error})
		return
	case model.StatusDone:
	default:
		writeJSON(w, http.StatusConflict, failedResponse{Status: job.Status, Error: ErrNotReady.Error()})
		return
	}

	if aud := strings.TrimSpace(r.URL.Query().Get("audience")); aud != "" {
		writeJSON(w, http.StatusOK, h.deps.Evaluate(r.Context(), job.Result, aud))
		return
	}
	writeJSON(w, http.StatusOK, job.Result)
}

func (h *JobsHandler) lookup(w http.ResponseWriter, r *http.Request) (model.Job, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing job id"))
		return model.Job{}, false
	}
	job, err := h.deps.Job(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return model.Job{}, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", nil)
		return model.Job{}, false
	}
	return job, true
}
