package service

import (
	"time"

	"github.com/okian/attnrisk/internal/analysis"
	"github.com/okian/attnrisk/internal/domain/audience"
	"github.com/okian/attnrisk/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCollaborators sets the transcoder, transcriber and acoustic extractor
// the pipeline runs on.
func WithCollaborators(tc analysis.Transcoder, tr analysis.Transcriber, ax analysis.AcousticExtractor) Option {
	return func(s *Service) {
		s.transcoder, s.transcriber, s.extractor = tc, tr, ax
	}
}

// WithPipelineOptions passes options through to the analysis pipeline.
func WithPipelineOptions(opts ...analysis.Option) Option {
	return func(s *Service) {
		s.pipelineOpts = append(s.pipelineOpts, opts...)
	}
}

// WithEvaluator replaces the audience evaluator.
func WithEvaluator(e *audience.Evaluator) Option {
	return func(s *Service) {
		if e != nil {
			s.evaluator = e
		}
	}
}

// WithWorkerCount sets the number of concurrent analyses.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of uploads waiting for a worker.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithUploadDir sets where uploads wait for analysis.
func WithUploadDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.uploadDir = dir
		}
	}
}

// WithMaxUploadBytes caps the size of a single upload.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithRetention sets how long finished jobs stay queryable.
func WithRetention(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithSweepSchedule sets the cron spec (with seconds) of the retention sweeper.
func WithSweepSchedule(spec string) Option {
	return func(s *Service) {
		if spec != "" {
			s.sweepSchedule = spec
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
