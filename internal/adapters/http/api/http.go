// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"io"
	"net/http"

	"github.com/okian/attnrisk/internal/domain/audience"
	"github.com/okian/attnrisk/internal/domain/model"
)

// Upload is one recording submitted for analysis.
type Upload struct {
	Filename       string
	IdempotencyKey string
	Body           io.Reader
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit stores the upload and queues it. duplicate is true when the
	// idempotency key already produced jobID. Returns ErrBackpressure when
	// the queue is full.
	Submit(ctx context.Context, u Upload) (jobID string, duplicate bool, err error)

	// Job returns a snapshot of the job. Returns an error wrapping
	// repository.ErrNotFound for unknown ids.
	Job(ctx context.Context, id string) (model.Job, error)

	// Evaluate scores a finished result against an audience profile.
	Evaluate(ctx context.Context, result *model.Result, audienceID string) audience.Fit

	// Audiences lists the known audience profiles.
	Audiences() []audience.Profile

	// MaxUploadBytes caps the size of a single upload.
	MaxUploadBytes() int64
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	uploadHandler   *UploadHandler
	jobsHandler     *JobsHandler
	audienceHandler *AudienceHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		uploadHandler:   NewUploadHandler(deps),
		jobsHandler:     NewJobsHandler(deps),
		audienceHandler: NewAudienceHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/upload", MetricsMiddleware(s.uploadHandler.HandleUpload, "upload"))
	mux.HandleFunc("GET /api/status/{id}", MetricsMiddleware(s.jobsHandler.HandleStatus, "status"))
	mux.HandleFunc("GET /api/result/{id}", MetricsMiddleware(s.jobsHandler.HandleResult, "result"))
	mux.HandleFunc("GET /api/audiences", MetricsMiddleware(s.audienceHandler.HandleList, "audiences"))
}
