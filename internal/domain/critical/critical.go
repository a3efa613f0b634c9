// Package critical picks the single worst moment of a scored timeline and
// guarantees it carries at least one actionable reason.
package critical

import (
	"fmt"

	"github.com/okian/attnrisk/internal/domain/features"
	"github.com/okian/attnrisk/internal/domain/model"
	"github.com/okian/attnrisk/internal/domain/scoring"
	"github.com/okian/attnrisk/internal/domain/timeline"
)

// Label marks the selected timeline point.
const Label = "CRITICAL MOMENT - Maximum attention drop"

// Soft reason codes attached when the selected point fired no check.
const (
	SoftSlow      = "speaking too slow"
	SoftFast      = "speaking too fast"
	SoftLong      = "long explanation"
	SoftEnergyDip = "energy dips"
)

const (
	defaultWindow   = 10.0
	defaultSlowWPM  = 130.0
	defaultFastWPM  = 170.0
	defaultLongWord = 40
	defaultSpan     = 10.0
)

const relativeDescription = "This is the highest risk point in your speech, though overall your speech maintains good attention."

// Selector chooses the critical moment.
type Selector struct {
	window   float64
	slowWPM  float64
	fastWPM  float64
	longWord int
	span     float64
}

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithSpan sets how far past the point the moment's end reaches.
func WithSpan(seconds float64) Option {
	return func(s *Selector) {
		if seconds > 0 {
			s.span = seconds
		}
	}
}

// New creates a Selector.
func New(opts ...Option) *Selector {
	s := &Selector{
		window:   defaultWindow,
		slowWPM:  defaultSlowWPM,
		fastWPM:  defaultFastWPM,
		longWord: defaultLongWord,
		span:     defaultSpan,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Selection is the chosen moment plus the labeled timeline.
type Selection struct {
	Moment   model.CriticalMoment
	Found    bool
	Index    int
	Timeline []model.TimelinePoint
}

// Placeholder is returned when the timeline is empty.
func Placeholder() model.CriticalMoment {
	return model.CriticalMoment{
		Start:            "0:00",
		End:              "0:00",
		Risk:             "Low",
		Description:      "No critical sections detected. Your speech maintains good audience attention throughout.",
		Reasons:          []string{},
		DetailedProblems: []string{},
	}
}

// Select picks the maximum-risk point, earliest first on ties, restricted
// to high-risk candidates when there are any. The returned timeline is a
// copy with exactly that point labeled; the input is not modified.
func (s *Selector) Select(set features.Set, scored scoring.Scored) Selection {
	if len(scored.Timeline) == 0 {
		return Selection{Moment: Placeholder(), Index: -1}
	}

	idx, description, end := s.pick(set, scored)
	p := scored.Timeline[idx]

	m := model.CriticalMoment{
		Start:            p.Time,
		End:              timeline.Clock(end),
		Risk:             fmt.Sprintf("%d%%", p.Risk),
		Description:      description,
		Reasons:          p.Reasons(),
		DetailedProblems: p.Problems(),
		SegmentText:      p.SegmentText,
		RiskValue:        p.Risk,
	}
	if len(m.Reasons) == 0 {
		soft := s.softFindings(set, p.TimeSeconds)
		for _, f := range soft {
			m.Reasons = append(m.Reasons, f.Code)
			m.DetailedProblems = append(m.DetailedProblems, f.Message)
		}
	}

	labeled := make([]model.TimelinePoint, len(scored.Timeline))
	copy(labeled, scored.Timeline)
	labeled[idx].Critical = true
	labeled[idx].Label = Label

	return Selection{Moment: m, Found: true, Index: idx, Timeline: labeled}
}

func (s *Selector) pick(set features.Set, scored scoring.Scored) (int, string, float64) {
	if len(scored.Candidates) > 0 {
		best := scored.Candidates[0]
		for _, c := range scored.Candidates[1:] {
			if scored.Timeline[c.Index].Risk > scored.Timeline[best.Index].Risk {
				best = c
			}
		}
		return best.Index, best.Description, best.End
	}

	best := 0
	for i, p := range scored.Timeline {
		if p.Risk > scored.Timeline[best].Risk {
			best = i
		}
	}
	end := scored.Timeline[best].TimeSeconds + s.span
	if end > set.Duration {
		end = set.Duration
	}
	return best, relativeDescription, end
}

// softFindings explains a point that crossed no threshold. It never
// returns an empty list.
func (s *Selector) softFindings(set features.Set, t float64) []model.Finding {
	var out []model.Finding
	if seg, ok := set.SegmentAt(t); ok {
		words := features.CountWords(seg.Text)
		wpm := float64(words) / s.window * 60
		switch {
		case wpm < s.slowWPM:
			out = append(out, model.Finding{Code: SoftSlow, Message: fmt.Sprintf(
				"Your pace drops to about %.0f words per minute here. Pick it up slightly to hold attention.", wpm)})
		case wpm > s.fastWPM:
			out = append(out, model.Finding{Code: SoftFast, Message: fmt.Sprintf(
				"Your pace rises to about %.0f words per minute here. Ease off a little so key points land.", wpm)})
		}
		if words > s.longWord {
			out = append(out, model.Finding{Code: SoftLong, Message: fmt.Sprintf(
				"This %d-word explanation runs long. Split it with a short pause or an example.", words)})
		}
	}
	if len(out) == 0 {
		out = append(out, model.Finding{Code: SoftEnergyDip,
			Message: "Your energy dips slightly here compared with the rest of the recording."})
	}
	return out
}
