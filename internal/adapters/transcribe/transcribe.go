// Package transcribe obtains time-aligned transcripts from an
// OpenAI-compatible speech-to-text endpoint.
package transcribe

import (
	"context"
	"strings"

	"github.com/okian/attnrisk/internal/analysis"
	"github.com/okian/attnrisk/internal/domain/model"
	"github.com/okian/attnrisk/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// Whisper is a Transcriber backed by the /audio/transcriptions API.
type Whisper struct {
	client   *openai.Client
	model    string
	language string
	logger   logger.Logger
}

// New creates a Whisper transcriber authenticated with token.
func New(token string, opts ...Option) *Whisper {
	w := &Whisper{
		model:  openai.Whisper1,
		logger: logger.Get().Named("transcribe"),
	}
	cfg := openai.DefaultConfig(token)
	for _, opt := range opts {
		opt(w, &cfg)
	}
	w.client = openai.NewClientWithConfig(cfg)
	return w
}

// Transcribe uploads wavPath and returns the transcript with segment
// timings. Any API failure is reported as a TranscriptionError.
func (w *Whisper) Transcribe(ctx context.Context, wavPath string) (model.Transcript, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       w.model,
		FilePath:    wavPath,
		Format:      openai.AudioResponseFormatVerboseJSON,
		Temperature: 0,
		Language:    w.language,
	})
	if err != nil {
		w.logger.Warn(ctx, "transcription request failed", logger.Error(err))
		return model.Transcript{}, &analysis.TranscriptionError{Message: err.Error(), Err: err}
	}

	out := model.Transcript{
		Text:     strings.TrimSpace(resp.Text),
		Language: resp.Language,
		Segments: make([]model.TranscriptSegment, 0, len(resp.Segments)),
	}
	for _, s := range resp.Segments {
		out.Segments = append(out.Segments, model.TranscriptSegment{
			Text:  strings.TrimSpace(s.Text),
			Start: s.Start,
			End:   s.End,
		})
	}
	w.logger.Debug(ctx, "transcript received",
		logger.Int("segments", len(out.Segments)),
		logger.Int("chars", len(out.Text)),
	)
	return out, nil
}
