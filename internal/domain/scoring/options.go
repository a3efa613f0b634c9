package scoring

import "github.com/okian/attnrisk/internal/domain/readability"

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithPolicy replaces the penalty table.
func WithPolicy(p Policy) Option {
	return func(s *Scorer) {
		if p.MaxRisk > 0 {
			s.policy = p
		}
	}
}

// WithReadability sets the scorer used for per-segment complexity.
func WithReadability(r readability.Scorer) Option {
	return func(s *Scorer) {
		if r != nil {
			s.readability = r
		}
	}
}
