// Package scoring evaluates the per-signal checks at every timeline instant
// and accumulates a bounded risk with its findings.
package scoring

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/okian/attnrisk/internal/domain/features"
	"github.com/okian/attnrisk/internal/domain/model"
	"github.com/okian/attnrisk/internal/domain/readability"
	"github.com/okian/attnrisk/internal/domain/timeline"
)

// Candidate is a high-risk point with its rendered description.
type Candidate struct {
	Index       int
	End         float64
	Description string
}

// Scored is the output of one scoring pass.
type Scored struct {
	Timeline   []model.TimelinePoint
	Candidates []Candidate
}

// Scorer applies a Policy to feature sets. It holds no mutable state and is
// safe for concurrent use.
type Scorer struct {
	policy      Policy
	readability readability.Scorer
}

// New creates a Scorer with the default policy and Flesch readability.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		policy:      DefaultPolicy(),
		readability: readability.Flesch{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns a copy of the active penalty table.
func (s *Scorer) Policy() Policy {
	return s.policy
}

// Score evaluates every instant in order.
func (s *Scorer) Score(set features.Set, instants []timeline.Instant) Scored {
	out := Scored{Timeline: make([]model.TimelinePoint, 0, len(instants))}
	for i, in := range instants {
		seg, hasSeg := set.SegmentAt(in.Seconds)
		p := s.point(set, in, seg, hasSeg)
		if p.Risk > s.policy.HighRisk {
			out.Candidates = append(out.Candidates, Candidate{
				Index:       i,
				End:         s.candidateEnd(in.Seconds, set.Duration),
				Description: s.describe(p, seg, hasSeg),
			})
		}
		out.Timeline = append(out.Timeline, p)
	}
	return out
}

// Point scores a single instant.
func (s *Scorer) Point(set features.Set, in timeline.Instant) model.TimelinePoint {
	seg, ok := set.SegmentAt(in.Seconds)
	return s.point(set, in, seg, ok)
}

func (s *Scorer) point(set features.Set, in timeline.Instant, seg model.TranscriptSegment, hasSeg bool) model.TimelinePoint {
	var findings []model.Finding
	if hasSeg {
		findings = append(findings, s.segmentFindings(seg)...)
	}
	if f, ok := s.energyFinding(set, in.Seconds); ok {
		findings = append(findings, f)
	}
	if f, ok := s.silenceFinding(set, in.Seconds); ok {
		findings = append(findings, f)
	}

	risk := s.policy.Base
	for _, f := range findings {
		risk += f.Penalty
	}
	risk = clamp(risk, 0, s.policy.MaxRisk)

	p := model.TimelinePoint{
		Time:        in.Clock,
		TimeSeconds: in.Seconds,
		Risk:        risk,
		Findings:    findings,
	}
	if hasSeg {
		p.SegmentText = seg.Text
	}
	return p
}

func (s *Scorer) segmentFindings(seg model.TranscriptSegment) []model.Finding {
	var out []model.Finding
	text := strings.TrimSpace(seg.Text)
	words := features.CountWords(text)

	if dur := seg.Duration(); text != "" && dur > s.policy.MinPaceDuration {
		wpm := float64(words) / dur * 60
		if f, ok := s.paceFinding(wpm); ok {
			out = append(out, f)
		}
	}

	fillers := features.CountFillers(text)
	for _, t := range s.policy.Fillers {
		if float64(fillers) >= t.Bound {
			out = append(out, finding(t, t.Code, fmt.Sprintf(t.Message, fillers)))
			break
		}
	}

	for _, t := range s.policy.Length {
		if float64(words) > t.Bound {
			out = append(out, finding(t, t.Code, fmt.Sprintf(t.Message, words)))
			break
		}
	}

	if utf8.RuneCountInString(text) > s.policy.MinComplexityText {
		ease := s.readability.Score(text)
		for _, t := range s.policy.Complexity {
			if ease < t.Bound {
				out = append(out, finding(t, t.Code, t.Message))
				break
			}
		}
	}
	return out
}

func (s *Scorer) paceFinding(wpm float64) (model.Finding, bool) {
	for _, t := range s.policy.FastPace {
		if wpm > t.Bound {
			return finding(t, t.Code, fmt.Sprintf(t.Message, wpm)), true
		}
	}
	for _, t := range s.policy.SlowPace {
		if wpm < t.Bound {
			return finding(t, t.Code, fmt.Sprintf(t.Message, wpm)), true
		}
	}
	return model.Finding{}, false
}

func (s *Scorer) energyFinding(set features.Set, t float64) (model.Finding, bool) {
	sample, ok := set.EnergyAt(t)
	if !ok {
		return model.Finding{}, false
	}
	for _, tier := range s.policy.Energy {
		if sample < set.EnergyMean-tier.Bound*set.EnergyStd {
			return finding(tier, tier.Code, tier.Message), true
		}
	}
	return model.Finding{}, false
}

func (s *Scorer) silenceFinding(set features.Set, t float64) (model.Finding, bool) {
	gap, ok := set.SilenceAt(t)
	if !ok {
		return model.Finding{}, false
	}
	span := timeline.Range(gap.Start, gap.End)
	for _, tier := range s.policy.Silence {
		if gap.Duration > tier.Bound {
			return finding(tier,
				fmt.Sprintf(tier.Code, gap.Duration),
				fmt.Sprintf(tier.Message, span, gap.Duration),
			), true
		}
	}
	return model.Finding{}, false
}

// describe renders the description of a high-risk point.
func (s *Scorer) describe(p model.TimelinePoint, seg model.TranscriptSegment, hasSeg bool) string {
	problems := p.Problems()
	if !hasSeg {
		if len(problems) == 0 {
			return "Critical attention drop detected."
		}
		return strings.Join(problems, " ")
	}
	preview := Excerpt(seg.Text, s.policy.ExcerptRunes)
	if len(problems) == 0 {
		return fmt.Sprintf("Multiple issues detected. Transcript: \"%s\"", preview)
	}
	return fmt.Sprintf("%s\n\nTranscript: \"%s\"", strings.Join(problems, " "), preview)
}

func (s *Scorer) candidateEnd(t, duration float64) float64 {
	end := t + s.policy.CandidateSpan
	if end > duration {
		return duration
	}
	return end
}

// Excerpt shortens text to at most n runes, marking truncation with "...".
func Excerpt(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	r := []rune(text)
	return string(r[:n]) + "..."
}

func finding(t Tier, code, msg string) model.Finding {
	return model.Finding{Code: code, Penalty: t.Penalty, Message: msg}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
