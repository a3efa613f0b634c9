// Package analysis runs one recording through transcoding, feature
// extraction, scoring and synthesis, reporting progress at fixed points.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/okian/attnrisk/internal/domain/advice"
	"github.com/okian/attnrisk/internal/domain/critical"
	"github.com/okian/attnrisk/internal/domain/features"
	"github.com/okian/attnrisk/internal/domain/model"
	"github.com/okian/attnrisk/internal/domain/readability"
	"github.com/okian/attnrisk/internal/domain/scoring"
	"github.com/okian/attnrisk/internal/domain/timeline"
	"github.com/okian/attnrisk/pkg/logger"
	"github.com/okian/attnrisk/pkg/metrics"
)

// Progress checkpoints.
const (
	ProgressStarted     = 5
	ProgressTranscoded  = 10
	ProgressDecoded     = 15
	ProgressAcoustics   = 30
	ProgressTranscribe  = 35
	ProgressTranscribed = 60
	ProgressLexical     = 75
	ProgressScored      = 90
	ProgressDone        = 100
)

// Transcoder normalizes an input recording to mono 16kHz PCM WAV.
type Transcoder interface {
	Transcode(ctx context.Context, inputPath string) (string, error)
}

// Transcriber turns a WAV file into a time-aligned transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (model.Transcript, error)
}

// AcousticExtractor computes the energy envelope and silences of a WAV file.
type AcousticExtractor interface {
	Extract(ctx context.Context, wavPath string) (model.Acoustics, error)
}

// ProgressFunc receives progress updates for a job.
type ProgressFunc func(jobID string, percent int)

// Pipeline is the analysis entry point. A Pipeline holds no per-job state
// and may run several jobs concurrently.
type Pipeline struct {
	transcoder  Transcoder
	transcriber Transcriber
	extractor   AcousticExtractor
	readability readability.Scorer
	scorer      *scoring.Scorer
	selector    *critical.Selector
	synth       *advice.Synthesizer

	progress     ProgressFunc
	cleanupInput bool
	logger       logger.Logger
}

// NewPipeline creates a Pipeline over the given collaborators.
func NewPipeline(tc Transcoder, tr Transcriber, ax AcousticExtractor, opts ...Option) *Pipeline {
	p := &Pipeline{
		transcoder:   tc,
		transcriber:  tr,
		extractor:    ax,
		readability:  readability.Flesch{},
		selector:     critical.New(),
		synth:        advice.New(),
		progress:     func(string, int) {},
		cleanupInput: true,
		logger:       logger.Get().Named("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.scorer == nil {
		p.scorer = scoring.New(scoring.WithReadability(p.readability))
	}
	return p
}

// Run analyzes the recording at filePath. On any failure no result is
// returned; temporary files are removed on every path.
func (p *Pipeline) Run(ctx context.Context, jobID, filePath string) (*model.Result, error) {
	start := time.Now()
	log := p.logger.With(logger.JobID(jobID))

	var wavPath string
	defer func() {
		p.remove(ctx, log, wavPath)
		if p.cleanupInput {
			p.remove(ctx, log, filePath)
		}
	}()

	p.progress(jobID, ProgressStarted)
	log.Info(ctx, "analysis started", logger.String("input", filePath))

	var err error
	wavPath, err = timed("transcode", func() (string, error) {
		return p.transcoder.Transcode(ctx, filePath)
	})
	if err != nil {
		var ce *ConversionError
		if !errors.As(err, &ce) {
			err = &ConversionError{Output: err.Error(), Err: err}
		}
		return nil, p.fail(ctx, log, err)
	}
	p.progress(jobID, ProgressTranscoded)

	acoustics, err := timed("acoustics", func() (model.Acoustics, error) {
		return p.extractor.Extract(ctx, wavPath)
	})
	if err != nil {
		return nil, p.fail(ctx, log, &ConversionError{Output: fmt.Sprintf("decode waveform: %v", err), Err: err})
	}
	p.progress(jobID, ProgressDecoded)
	log.Debug(ctx, "acoustics extracted",
		logger.Float64("duration", acoustics.Duration),
		logger.Int("envelope", len(acoustics.Energy)),
		logger.Int("silences", len(acoustics.Silences)),
	)
	p.progress(jobID, ProgressAcoustics)

	p.progress(jobID, ProgressTranscribe)
	transcript, err := timed("transcribe", func() (model.Transcript, error) {
		return p.transcriber.Transcribe(ctx, wavPath)
	})
	if err != nil {
		var te *TranscriptionError
		if !errors.As(err, &te) {
			err = &TranscriptionError{Message: err.Error(), Err: err}
		}
		return nil, p.fail(ctx, log, err)
	}
	p.progress(jobID, ProgressTranscribed)

	res, err := p.analyze(ctx, log, jobID, transcript, acoustics)
	if err != nil {
		return nil, p.fail(ctx, log, err)
	}

	p.progress(jobID, ProgressDone)
	metrics.RecordAnalysisDuration(time.Since(start).Seconds())
	log.Info(ctx, "analysis complete",
		logger.Duration("elapsed", time.Since(start)),
		logger.String("drop_risk", res.Summary.DropRisk),
	)
	return res, nil
}

// Analyze runs the scoring core over already extracted signals. Panics are
// recovered and reported as InternalScoringError.
func (p *Pipeline) Analyze(ctx context.Context, jobID string, transcript model.Transcript, acoustics model.Acoustics) (*model.Result, error) {
	return p.analyze(ctx, p.logger.With(logger.JobID(jobID)), jobID, transcript, acoustics)
}

func (p *Pipeline) analyze(ctx context.Context, log logger.Logger, jobID string, transcript model.Transcript, acoustics model.Acoustics) (res *model.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			detail := fmt.Sprintf("%v\n%s", r, debug.Stack())
			log.Error(ctx, "scoring panicked", logger.String("detail", detail))
			res, err = nil, &InternalScoringError{Detail: detail}
		}
	}()

	stage := time.Now()
	set := features.Build(features.Input{
		Transcript:  transcript,
		Acoustics:   acoustics,
		ReadingEase: p.readability.Score(transcript.Text),
	})
	metrics.RecordStageDuration("features", time.Since(stage).Seconds())
	p.progress(jobID, ProgressLexical)

	stage = time.Now()
	scored := p.scorer.Score(set, timeline.Sample(set.Duration))
	sel := p.selector.Select(set, scored)
	metrics.RecordStageDuration("scoring", time.Since(stage).Seconds())
	if sel.Found {
		metrics.RecordCriticalRisk(sel.Moment.RiskValue)
	}
	p.progress(jobID, ProgressScored)

	highRisk := make([]model.TimelinePoint, 0, len(scored.Candidates))
	for _, c := range scored.Candidates {
		highRisk = append(highRisk, scored.Timeline[c.Index])
	}
	summary := p.synth.Summarize(advice.Input{
		Set:       set,
		Moment:    sel.Moment,
		HasMoment: sel.Found,
		HighRisk:  highRisk,
	})

	log.Debug(ctx, "timeline scored",
		logger.Int("points", len(sel.Timeline)),
		logger.Int("high_risk", len(scored.Candidates)),
		logger.Int("suggestions", len(summary.Suggestions)),
	)

	return &model.Result{
		CriticalMoments: []model.CriticalMoment{sel.Moment},
		Timeline:        sel.Timeline,
		Summary:         summary,
		Segments:        set.Segments,
		Transcript:      set.Transcript,
		Duration:        set.Duration,
		FillerPattern:   features.FillerPattern,
	}, nil
}

func (p *Pipeline) fail(ctx context.Context, log logger.Logger, err error) error {
	var ise *InternalScoringError
	if errors.As(err, &ise) {
		log.Error(ctx, "analysis failed", logger.String("kind", Kind(err)), logger.String("detail", ise.Detail))
	} else {
		log.Error(ctx, "analysis failed", logger.String("kind", Kind(err)), logger.Error(err))
	}
	metrics.RecordErrorByComponent("pipeline", Kind(err))
	return err
}

func (p *Pipeline) remove(ctx context.Context, log logger.Logger, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn(ctx, "temporary file not removed", logger.String("path", path), logger.Error(err))
	}
}

// timed runs fn and records its duration as a pipeline stage.
func timed[T any](stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	metrics.RecordStageDuration(stage, time.Since(start).Seconds())
	return v, err
}
