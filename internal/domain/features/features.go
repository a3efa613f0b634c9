// Package features normalizes collaborator outputs (energy envelope, silences,
// transcript) into the single representation the scorer reads.
package features

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/okian/attnrisk/internal/domain/model"
)

// FillerPattern matches filler words as whole words in lowercased text.
const FillerPattern = `\b(um|uh|like|you know|so|actually|basically|literally)\b`

// MinSilenceGap is the shortest gap between voiced runs recorded as silence.
const MinSilenceGap = 2.0

var fillerRe = regexp.MustCompile(FillerPattern)

// Input bundles everything the collaborators produced for one recording.
type Input struct {
	Transcript  model.Transcript
	Acoustics   model.Acoustics
	ReadingEase float64
}

// Set is the normalized feature view of a recording.
type Set struct {
	Energy      []float64
	EnergyMean  float64
	EnergyStd   float64
	Silences    []model.SilenceInterval
	Segments    []model.TranscriptSegment
	Transcript  string
	WordCount   int
	FillerCount int
	ReadingEase float64
	Duration    float64
}

// Build normalizes in into a Set. Segments and silences are copied and
// sorted by start time.
func Build(in Input) Set {
	segs := make([]model.TranscriptSegment, len(in.Transcript.Segments))
	copy(segs, in.Transcript.Segments)
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })

	silences := make([]model.SilenceInterval, len(in.Acoustics.Silences))
	copy(silences, in.Acoustics.Silences)
	sort.SliceStable(silences, func(i, j int) bool { return silences[i].Start < silences[j].Start })

	energy := make([]float64, len(in.Acoustics.Energy))
	copy(energy, in.Acoustics.Energy)
	mean, std := meanStd(energy)

	duration := in.Acoustics.Duration
	if duration < 0 || math.IsNaN(duration) {
		duration = 0
	}

	return Set{
		Energy:      energy,
		EnergyMean:  mean,
		EnergyStd:   std,
		Silences:    silences,
		Segments:    segs,
		Transcript:  in.Transcript.Text,
		WordCount:   CountWords(in.Transcript.Text),
		FillerCount: CountFillers(in.Transcript.Text),
		ReadingEase: in.ReadingEase,
		Duration:    duration,
	}
}

// CountFillers counts filler-word occurrences in text, case-insensitively.
func CountFillers(text string) int {
	return len(fillerRe.FindAllStringIndex(strings.ToLower(text), -1))
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// SegmentAt returns the first segment, in start order, whose [Start, End]
// contains t. Segments may overlap, so end times are not assumed sorted.
func (s Set) SegmentAt(t float64) (model.TranscriptSegment, bool) {
	for _, seg := range s.Segments {
		if seg.Start > t {
			break
		}
		if seg.End >= t {
			return seg, true
		}
	}
	return model.TranscriptSegment{}, false
}

// SilenceAt returns the first silence interval, in start order, containing t.
func (s Set) SilenceAt(t float64) (model.SilenceInterval, bool) {
	for _, sil := range s.Silences {
		if sil.Start > t {
			break
		}
		if sil.Contains(t) {
			return sil, true
		}
	}
	return model.SilenceInterval{}, false
}

// EnergyAt returns the envelope sample proportionally aligned with t.
func (s Set) EnergyAt(t float64) (float64, bool) {
	n := len(s.Energy)
	if n == 0 {
		return 0, false
	}
	idx := 0
	if s.Duration > 0 {
		idx = int(t / s.Duration * float64(n))
	}
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return s.Energy[idx], true
}

// SpeechRate returns recording-wide words per minute.
func (s Set) SpeechRate() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.WordCount) / s.Duration * 60
}

// FillerDensity returns filler words per minute.
func (s Set) FillerDensity() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.FillerCount) / s.Duration * 60
}

// EnergyVariation returns std/mean of the envelope, 0 when the mean is 0.
func (s Set) EnergyVariation() float64 {
	if s.EnergyMean <= 0 {
		return 0
	}
	return s.EnergyStd / s.EnergyMean
}

// LowEnergyShare returns the percentage of envelope samples below mean-std.
func (s Set) LowEnergyShare() float64 {
	if len(s.Energy) == 0 {
		return 0
	}
	limit := s.EnergyMean - s.EnergyStd
	low := 0
	for _, e := range s.Energy {
		if e < limit {
			low++
		}
	}
	return float64(low) / float64(len(s.Energy)) * 100
}

// Interval is a voiced run in seconds.
type Interval struct {
	Start float64
	End   float64
}

// SilencesFromVoiced derives silences from ordered voiced runs: a gap is
// kept only when it exceeds minGap seconds. The gap before the first run is
// measured from 0.
func SilencesFromVoiced(voiced []Interval, minGap float64) []model.SilenceInterval {
	var out []model.SilenceInterval
	prevEnd := 0.0
	for _, v := range voiced {
		if gap := v.Start - prevEnd; gap > minGap {
			out = append(out, model.SilenceInterval{Start: prevEnd, End: v.Start, Duration: gap})
		}
		prevEnd = v.End
	}
	return out
}

func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(xs)))
}
