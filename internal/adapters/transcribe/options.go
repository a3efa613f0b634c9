package transcribe

import (
	"github.com/okian/attnrisk/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// Option applies a configuration option to Whisper.
type Option func(*Whisper, *openai.ClientConfig)

// WithBaseURL points the client at an OpenAI-compatible server.
func WithBaseURL(url string) Option {
	return func(_ *Whisper, c *openai.ClientConfig) {
		if url != "" {
			c.BaseURL = url
		}
	}
}

// WithModel sets the transcription model name.
func WithModel(name string) Option {
	return func(w *Whisper, _ *openai.ClientConfig) {
		if name != "" {
			w.model = name
		}
	}
}

// WithLanguage sets the ISO-639-1 language hint. Empty means auto-detect.
func WithLanguage(lang string) Option {
	return func(w *Whisper, _ *openai.ClientConfig) {
		w.language = lang
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Whisper, _ *openai.ClientConfig) {
		if l != nil {
			w.logger = l
		}
	}
}
