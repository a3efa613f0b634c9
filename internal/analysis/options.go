package analysis

import (
	"github.com/okian/attnrisk/internal/domain/advice"
	"github.com/okian/attnrisk/internal/domain/critical"
	"github.com/okian/attnrisk/internal/domain/readability"
	"github.com/okian/attnrisk/internal/domain/scoring"
	"github.com/okian/attnrisk/pkg/logger"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.progress = fn
		}
	}
}

// WithScorer replaces the risk scorer.
func WithScorer(s *scoring.Scorer) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.scorer = s
		}
	}
}

// WithSelector replaces the critical-moment selector.
func WithSelector(s *critical.Selector) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.selector = s
		}
	}
}

// WithSynthesizer replaces the suggestion synthesizer.
func WithSynthesizer(s *advice.Synthesizer) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.synth = s
		}
	}
}

// WithReadability sets the recording-wide readability scorer.
func WithReadability(r readability.Scorer) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.readability = r
		}
	}
}

// WithInputCleanup controls whether Run removes the input file when done.
// The transcoded waveform is always removed.
func WithInputCleanup(enabled bool) Option {
	return func(p *Pipeline) {
		p.cleanupInput = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}
