// Package acoustic derives the energy envelope and silence map of a WAV
// recording.
package acoustic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/okian/attnrisk/internal/domain/features"
	"github.com/okian/attnrisk/internal/domain/model"
	"github.com/okian/attnrisk/pkg/logger"
)

// Envelope defaults.
const (
	DefaultFrameLength = 2048
	DefaultHopLength   = 512
	DefaultTopDB       = 30.0
)

// ErrInvalidWav is returned when the input is not a decodable PCM WAV.
var ErrInvalidWav = errors.New("invalid wav file")

// Extractor computes short-time RMS energy and the silences between voiced
// runs.
type Extractor struct {
	frame  int
	hop    int
	topDB  float64
	minGap float64
	logger logger.Logger
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		frame:  DefaultFrameLength,
		hop:    DefaultHopLength,
		topDB:  DefaultTopDB,
		minGap: features.MinSilenceGap,
		logger: logger.Get().Named("acoustic"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract decodes wavPath and returns its acoustics.
func (e *Extractor) Extract(ctx context.Context, wavPath string) (model.Acoustics, error) {
	fh, err := os.Open(wavPath)
	if err != nil {
		return model.Acoustics{}, err
	}
	defer fh.Close()

	dec := wav.NewDecoder(fh)
	if !dec.IsValidFile() {
		return model.Acoustics{}, ErrInvalidWav
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return model.Acoustics{}, fmt.Errorf("read pcm: %w", err)
	}

	samples := mono(buf, int(dec.NumChans), int(dec.BitDepth))
	rate := int(dec.SampleRate)
	if rate <= 0 {
		return model.Acoustics{}, ErrInvalidWav
	}

	energy := e.Envelope(samples)
	voiced := e.Voiced(energy, len(samples), rate)
	out := model.Acoustics{
		Energy:     energy,
		Silences:   features.SilencesFromVoiced(voiced, e.minGap),
		Duration:   float64(len(samples)) / float64(rate),
		SampleRate: rate,
	}
	e.logger.Debug(ctx, "waveform analyzed",
		logger.Float64("duration", out.Duration),
		logger.Int("frames", len(energy)),
		logger.Int("voiced_runs", len(voiced)),
		logger.Int("silences", len(out.Silences)),
	)
	return out, nil
}

// Envelope returns the RMS of centered, zero-padded frames spaced hop
// samples apart.
func (e *Extractor) Envelope(samples []float64) []float64 {
	if len(samples) == 0 {
		return nil
	}
	half := e.frame / 2
	n := 1 + len(samples)/e.hop
	out := make([]float64, n)
	for f := 0; f < n; f++ {
		center := f * e.hop
		lo, hi := center-half, center+half
		if lo < 0 {
			lo = 0
		}
		if hi > len(samples) {
			hi = len(samples)
		}
		var sum float64
		for _, s := range samples[lo:hi] {
			sum += s * s
		}
		out[f] = math.Sqrt(sum / float64(e.frame))
	}
	return out
}

// Voiced returns the runs of frames whose energy is within topDB of the
// peak, converted to seconds.
func (e *Extractor) Voiced(energy []float64, total, rate int) []features.Interval {
	var peak float64
	for _, v := range energy {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		return nil
	}
	threshold := peak * math.Pow(10, -e.topDB/20)

	toSec := func(frame int) float64 {
		s := frame * e.hop
		if s > total {
			s = total
		}
		return float64(s) / float64(rate)
	}

	var out []features.Interval
	start := -1
	for i, v := range energy {
		switch {
		case v > threshold && start < 0:
			start = i
		case v <= threshold && start >= 0:
			out = append(out, features.Interval{Start: toSec(start), End: toSec(i)})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, features.Interval{Start: toSec(start), End: toSec(len(energy))})
	}
	return out
}

// mono averages interleaved channels and scales to [-1, 1].
func mono(buf *audio.IntBuffer, channels, depth int) []float64 {
	if channels < 1 {
		channels = 1
	}
	if depth <= 0 {
		depth = 16
	}
	scale := math.Pow(2, float64(depth-1))
	n := len(buf.Data) / channels
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum int
		for c := 0; c < channels; c++ {
			sum += buf.Data[i*channels+c]
		}
		out[i] = float64(sum) / float64(channels) / scale
	}
	return out
}
