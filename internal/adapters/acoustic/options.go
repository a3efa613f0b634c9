package acoustic

import "github.com/okian/attnrisk/pkg/logger"

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithFrame sets the analysis frame and hop length in samples.
func WithFrame(frame, hop int) Option {
	return func(e *Extractor) {
		if frame > 0 && hop > 0 {
			e.frame, e.hop = frame, hop
		}
	}
}

// WithTopDB sets how far below the peak a frame may fall and still count
// as voiced.
func WithTopDB(db float64) Option {
	return func(e *Extractor) {
		if db > 0 {
			e.topDB = db
		}
	}
}

// WithMinSilence sets the shortest gap reported as a silence.
func WithMinSilence(seconds float64) Option {
	return func(e *Extractor) {
		if seconds > 0 {
			e.minGap = seconds
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}
