package transcode

import "github.com/okian/attnrisk/pkg/logger"

// Option applies a configuration option to FFmpeg.
type Option func(*FFmpeg)

// WithBinary sets the ffmpeg executable name or path.
func WithBinary(path string) Option {
	return func(f *FFmpeg) {
		if path != "" {
			f.binary = path
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(f *FFmpeg) {
		if l != nil {
			f.logger = l
		}
	}
}
