package analysis

import "errors"

// Sentinel kinds for analysis failures.
var (
	ErrConversion      = errors.New("audio conversion failed")
	ErrTranscription   = errors.New("transcription failed")
	ErrInternalScoring = errors.New("internal scoring error")
)

// ConversionError reports a transcoder or waveform decoding failure. Output
// carries the tool's diagnostic text and is surfaced to the job verbatim.
type ConversionError struct {
	Output string
	Err    error
}

func (e *ConversionError) Error() string {
	return "audio conversion failed: " + e.Output
}

// Unwrap exposes the underlying cause.
func (e *ConversionError) Unwrap() error { return e.Err }

// Is matches ErrConversion.
func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

// TranscriptionError reports a speech-to-text failure.
type TranscriptionError struct {
	Message string
	Err     error
}

func (e *TranscriptionError) Error() string {
	return "transcription failed: " + e.Message
}

// Unwrap exposes the underlying cause.
func (e *TranscriptionError) Unwrap() error { return e.Err }

// Is matches ErrTranscription.
func (e *TranscriptionError) Is(target error) bool { return target == ErrTranscription }

// InternalScoringError reports an unexpected failure while windowing or
// scoring. Its message is generic; Detail holds the diagnostic for logs.
type InternalScoringError struct {
	Detail string
}

func (e *InternalScoringError) Error() string {
	return "internal error while analyzing the recording"
}

// Is matches ErrInternalScoring.
func (e *InternalScoringError) Is(target error) bool { return target == ErrInternalScoring }

// Kind returns a short label for err, used in metrics.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrConversion):
		return "conversion"
	case errors.Is(err, ErrTranscription):
		return "transcription"
	case errors.Is(err, ErrInternalScoring):
		return "internal"
	default:
		return "unknown"
	}
}
