// Package transcode normalizes uploaded recordings to mono 16kHz PCM WAV
// by shelling out to ffmpeg.
package transcode

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-audio/wav"
	"github.com/okian/attnrisk/internal/analysis"
	"github.com/okian/attnrisk/pkg/logger"
)

const (
	// SampleRate is the target sample rate in Hz.
	SampleRate = 16000
	// Suffix is appended to the input path to form the output path.
	Suffix = ".norm.wav"
)

// FFmpeg is a Transcoder backed by the ffmpeg binary.
type FFmpeg struct {
	binary string
	logger logger.Logger
}

// New creates an FFmpeg transcoder.
func New(opts ...Option) *FFmpeg {
	f := &FFmpeg{
		binary: "ffmpeg",
		logger: logger.Get().Named("transcode"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Args returns the ffmpeg arguments used to convert in to out.
func Args(in, out string) []string {
	return []string{"-y", "-i", in, "-ar", strconv.Itoa(SampleRate), "-ac", "1", "-acodec", "pcm_s16le", out}
}

// Transcode converts inputPath and returns the path of the produced WAV.
// Inputs already in the target format are copied without invoking ffmpeg.
// On failure the partial output is removed and a ConversionError carries
// the tool output.
func (f *FFmpeg) Transcode(ctx context.Context, inputPath string) (string, error) {
	out := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + Suffix

	if IsTargetWav(inputPath) {
		if err := copyFile(inputPath, out); err != nil {
			_ = os.Remove(out)
			return "", &analysis.ConversionError{Output: err.Error(), Err: err}
		}
		f.logger.Debug(ctx, "input already normalized", logger.String("input", inputPath))
		return out, nil
	}

	cmd := exec.CommandContext(ctx, f.binary, Args(inputPath, out)...)
	cmd.Env = []string{}
	output, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.Remove(out)
		msg := strings.TrimSpace(string(output))
		if msg == "" {
			msg = err.Error()
		}
		f.logger.Warn(ctx, "ffmpeg failed", logger.String("input", inputPath), logger.Error(err))
		return "", &analysis.ConversionError{Output: msg, Err: err}
	}
	if _, err := os.Stat(out); err != nil {
		return "", &analysis.ConversionError{Output: "no output produced", Err: err}
	}
	return out, nil
}

// IsTargetWav reports whether path is a valid 16-bit mono 16kHz WAV.
func IsTargetWav(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		return false
	}
	fh, err := os.Open(path)
	if err != nil {
		return false
	}
	defer fh.Close()

	dec := wav.NewDecoder(fh)
	if !dec.IsValidFile() {
		return false
	}
	return dec.BitDepth == 16 && dec.NumChans == 1 && dec.SampleRate == SampleRate
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("empty input")
	}
	return os.WriteFile(dst, data, 0o600)
}
