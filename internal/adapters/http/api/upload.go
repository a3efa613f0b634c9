package api

import (
	"errors"
	"net/http"
	"strings"
)

const (
	multipartMemory = 32 << 20
	multipartSlack  = 1 << 20
)

// UploadHandler accepts recordings.
type UploadHandler struct {
	deps Dependencies
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(deps Dependencies) *UploadHandler {
	return &UploadHandler{deps: deps}
}

type uploadResponse struct {
	JobID     string `json:"job_id"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// HandleUpload handles POST /api/upload with a multipart "file" field.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.deps.MaxUploadBytes()+multipartSlack)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", ErrUploadTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing file field"))
		return
	}
	defer file.Close()

	id, dup, err := h.deps.Submit(r.Context(), Upload{
		Filename:       header.Filename,
		IdempotencyKey: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
		Body:           file,
	})
	switch {
	case errors.Is(err, ErrBackpressure):
		w.Header().Set("Retry-After", "5")
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
		return
	case errors.Is(err, ErrUploadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
		return
	case errors.Is(err, ErrEmptyUpload), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal", errors.New("could not accept upload"))
		return
	}

	writeJSON(w, http.StatusAccepted, uploadResponse{JobID: id, Duplicate: dup})
}
