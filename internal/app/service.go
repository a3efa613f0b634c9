// Package service wires the analysis pipeline, job registry, queue and
// workers, and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dhowden/tag"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/okian/attnrisk/internal/adapters/http/api"
	"github.com/okian/attnrisk/internal/adapters/mq/queue"
	"github.com/okian/attnrisk/internal/adapters/mq/worker"
	"github.com/okian/attnrisk/internal/adapters/repository"
	"github.com/okian/attnrisk/internal/analysis"
	"github.com/okian/attnrisk/internal/domain/audience"
	"github.com/okian/attnrisk/internal/domain/dedupe"
	"github.com/okian/attnrisk/internal/domain/model"
	"github.com/okian/attnrisk/pkg/logger"
	"github.com/okian/attnrisk/pkg/metrics"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrNotConfigured = errors.New("analysis collaborators not configured")
)

var errNotProcessing = errors.New("job not processing")

// Service implements the API dependencies for the analysis system.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	transcoder   analysis.Transcoder
	transcriber  analysis.Transcriber
	extractor    analysis.AcousticExtractor
	pipelineOpts []analysis.Option
	evaluator    *audience.Evaluator

	// Core components
	jobs     repository.Store
	registry dedupe.Registry
	queue    queue.Queue
	pool     *worker.Pool
	sweeper  *cron.Cron

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	uploadDir     string
	maxUpload     int64
	retention     time.Duration
	sweepSchedule string

	started bool
	logger  logger.Logger
}

var _ api.Dependencies = (*Service)(nil)

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		evaluator:     audience.NewEvaluator(),
		workerCount:   runtime.NumCPU(),
		queueSize:     64,
		dedupeSize:    10_000,
		uploadDir:     filepath.Join(os.TempDir(), "attnrisk"),
		maxUpload:     200 << 20,
		retention:     time.Hour,
		sweepSchedule: "0 */5 * * * *",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.transcoder == nil || s.transcriber == nil || s.extractor == nil {
		return ErrNotConfigured
	}
	if err := os.MkdirAll(s.uploadDir, 0o700); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	s.logger.Info(ctx, "starting analysis service...")

	s.jobs = repository.NewMemoryStore(ctx)
	s.registry = dedupe.NewInMemoryRegistry(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	opts := append(append([]analysis.Option{}, s.pipelineOpts...), analysis.WithProgress(s.progress))
	pipeline := analysis.NewPipeline(s.transcoder, s.transcriber, s.extractor, opts...)

	s.pool = worker.NewPool(s.workerCount, s.queue, pipeline, s.jobs)
	s.pool.Start(ctx)

	s.sweeper = cron.New(cron.WithSeconds())
	if _, err := s.sweeper.AddFunc(s.sweepSchedule, func() { s.SweepExpired(context.Background()) }); err != nil {
		_ = s.pool.Shutdown(ctx)
		s.closeJobs()
		return fmt.Errorf("schedule sweeper: %w", err)
	}
	s.sweeper.Start()

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.String("uploadDir", s.uploadDir),
	)
	return nil
}

// Stop closes the queue, waits for in-flight analyses and stops the sweeper.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping analysis service...")

	err := s.pool.Shutdown(ctx)
	<-s.sweeper.Stop().Done()
	s.closeJobs()

	s.started = false
	s.logger.Info(ctx, "analysis service stopped")
	return err
}

// Submit stores the upload and queues it for analysis.
func (s *Service) Submit(ctx context.Context, u api.Upload) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return "", false, ErrNotStarted
	}

	id := uuid.NewString()
	key := u.IdempotencyKey
	if key != "" {
		if existing, seen := s.registry.Claim(ctx, key, id); seen {
			metrics.RecordJobDeduplicated()
			s.logger.Debug(ctx, "duplicate upload", logger.JobID(existing))
			return existing, true, nil
		}
	}
	release := func() {
		if key != "" {
			s.registry.Release(ctx, key)
		}
	}

	path, size, err := s.save(id, u)
	if err != nil {
		release()
		return "", false, err
	}

	job := model.Job{
		ID:       id,
		Status:   model.StatusQueued,
		Filename: u.Filename,
		Format:   Sniff(path),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		_ = os.Remove(path)
		release()
		return "", false, fmt.Errorf("register job: %w", err)
	}

	if !s.queue.Enqueue(ctx, model.Ticket{JobID: id, Path: path, Filename: u.Filename, EnqueuedAt: time.Now()}) {
		_ = s.jobs.Delete(ctx, id)
		_ = os.Remove(path)
		release()
		return "", false, api.ErrBackpressure
	}

	metrics.RecordJobSubmitted()
	metrics.RecordUploadBytes(size)
	s.logger.Info(ctx, "job queued",
		logger.JobID(id),
		logger.String("filename", u.Filename),
		logger.String("format", job.Format),
		logger.Int("bytes", int(size)),
	)
	return id, false, nil
}

// Job returns a snapshot of the job with id.
func (s *Service) Job(ctx context.Context, id string) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.Job{}, ErrNotStarted
	}
	return s.jobs.Get(ctx, id)
}

// Evaluate scores a finished result against an audience profile.
func (s *Service) Evaluate(_ context.Context, result *model.Result, audienceID string) audience.Fit {
	fit := s.evaluator.Evaluate(result, audienceID)
	metrics.RecordAudienceEvaluation(fit.Audience, fit.FitScore)
	return fit
}

// Audiences lists the known audience profiles.
func (s *Service) Audiences() []audience.Profile {
	return audience.Profiles()
}

// MaxUploadBytes caps the size of a single upload.
func (s *Service) MaxUploadBytes() int64 {
	return s.maxUpload
}

// SweepExpired removes finished jobs older than the retention window.
func (s *Service) SweepExpired(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return 0
	}
	return s.jobs.Sweep(ctx, time.Now().Add(-s.retention))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"retention":   s.retention.String(),
	}
	if !s.started {
		return stats
	}

	ctx := context.Background()
	byStatus := map[model.Status]int{}
	for _, j := range s.jobs.List(ctx) {
		byStatus[j.Status]++
	}
	stats["queueLength"] = s.queue.Len(ctx)
	stats["totalJobs"] = s.jobs.Count(ctx)
	stats["jobsByStatus"] = byStatus
	stats["idempotencyKeys"] = s.registry.Size()
	return stats
}

func (s *Service) closeJobs() {
	if closer, ok := s.jobs.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

// progress publishes pipeline checkpoints onto the job.
func (s *Service) progress(jobID string, percent int) {
	_, err := s.jobs.Update(context.Background(), jobID, func(j *model.Job) error {
		if j.Status != model.StatusProcessing {
			return errNotProcessing
		}
		j.Progress = percent
		return nil
	})
	if err != nil {
		s.logger.Debug(context.Background(), "progress not recorded", logger.JobID(jobID), logger.Error(err))
	}
}

// save writes the upload body under the upload dir, refusing empty or
// oversized bodies.
func (s *Service) save(id string, u api.Upload) (string, int64, error) {
	if u.Body == nil {
		return "", 0, api.ErrEmptyUpload
	}
	path := filepath.Join(s.uploadDir, id+extension(u.Filename))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", 0, fmt.Errorf("create upload: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(u.Body, s.maxUpload+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	switch {
	case err != nil:
		err = fmt.Errorf("save upload: %w", err)
	case n == 0:
		err = api.ErrEmptyUpload
	case n > s.maxUpload:
		err = api.ErrUploadTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, err
	}
	return path, n, nil
}

// Sniff identifies the container format of the file at path from its
// content, falling back to the file extension.
func Sniff(path string) string {
	fallback := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	f, err := os.Open(path)
	if err != nil {
		return fallback
	}
	defer f.Close()

	_, fileType, err := tag.Identify(f)
	if err != nil || fileType == tag.UnknownFileType {
		return fallback
	}
	return strings.ToLower(string(fileType))
}

// extension keeps a short alphanumeric extension from the client's file
// name so the transcoder can use it as a hint.
func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 6 {
		return ".upload"
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ".upload"
		}
	}
	return ext
}
