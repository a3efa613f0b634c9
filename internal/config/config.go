// Package config defines service configuration and how it is loaded.
//
// Conventions:
// - New(ctx) returns a Config populated with defaults.
// - Load(ctx) layers a .env file, an optional YAML file and ATTNRISK_ env vars on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/robfig/cron/v3"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the number of uploads waiting for a worker.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of concurrent analyses.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many idempotency keys are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// UploadDir is where uploads wait for analysis.
	UploadDir string `koanf:"upload_dir"`

	// MaxUploadMB caps the size of a single upload.
	MaxUploadMB int64 `koanf:"max_upload_mb"`

	// FFmpegPath names the ffmpeg executable.
	FFmpegPath string `koanf:"ffmpeg_path"`

	// OpenAIAPIKey authenticates transcription requests.
	OpenAIAPIKey string `koanf:"openai_api_key"`

	// OpenAIBaseURL points at an OpenAI-compatible server. Empty uses the public API.
	OpenAIBaseURL string `koanf:"openai_base_url"`

	// WhisperModel is the transcription model name.
	WhisperModel string `koanf:"whisper_model"`

	// Language is the transcription language hint. Empty means auto-detect.
	Language string `koanf:"language"`

	// SilencePenaltyLong and SilencePenaltyShort are the risk penalties for
	// silences over 6s and over 4s.
	SilencePenaltyLong  int `koanf:"silence_penalty_long"`
	SilencePenaltyShort int `koanf:"silence_penalty_short"`

	// JobRetention is how long finished jobs stay queryable.
	JobRetention time.Duration `koanf:"job_retention"`

	// SweepSchedule is the cron spec (with seconds) of the retention sweeper.
	SweepSchedule string `koanf:"sweep_schedule"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New creates a Config with defaults. The context is reserved for
// loaders that need it.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":8000",
		QueueSize:           64,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          10_000,
		UploadDir:           filepath.Join(os.TempDir(), "attnrisk"),
		MaxUploadMB:         200,
		FFmpegPath:          "ffmpeg",
		WhisperModel:        "whisper-1",
		SilencePenaltyLong:  45,
		SilencePenaltyShort: 30,
		JobRetention:        time.Hour,
		SweepSchedule:       "0 */5 * * * *",
		ShutdownTimeout:     30 * time.Second,
	}
}

// MaxUploadBytes returns MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Validate checks the values a running service depends on.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxUploadMB < 1:
		return fmt.Errorf("%w: max_upload_mb must be positive", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	case c.SilencePenaltyLong < 0 || c.SilencePenaltyShort < 0:
		return fmt.Errorf("%w: silence penalties must not be negative", ErrInvalidConfig)
	case c.JobRetention <= 0:
		return fmt.Errorf("%w: job_retention must be positive", ErrInvalidConfig)
	}
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(c.SweepSchedule); err != nil {
		return fmt.Errorf("%w: sweep_schedule: %v", ErrInvalidConfig, err)
	}
	return nil
}
