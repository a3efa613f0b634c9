// Package audience re-scores a stored analysis against the tolerances of a
// target audience. Evaluation is a pure function of its inputs.
package audience

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/okian/attnrisk/internal/domain/features"
	"github.com/okian/attnrisk/internal/domain/model"
	"github.com/okian/attnrisk/internal/domain/readability"
)

// Penalties.
const (
	penaltyPace       = 20
	penaltyComplex    = 15
	penaltySimple     = 10
	penaltyFillers    = 15
	penaltySecondary  = 10
	penaltyLongAnswer = 15
)

// Thresholds.
const (
	fillerDensityLimit   = 3.0
	studentsEaseFloor    = 60.0
	studentsPaceCeiling  = 160.0
	professionalsPace    = 140.0
	professionalsAnswer  = 30.0
	interviewAnswerLimit = 60.0
	marketingPace        = 150.0
	marketingMessage     = 20.0
	directHigh           = 150.0
	directMedium         = 130.0
	explainHigh          = 30.0
	explainMedium        = 15.0
	firstPersonWindow    = 100
)

var firstPerson = regexp.MustCompile(`\bI\b`)

// StructuralInsights summarizes delivery structure with fixed thresholds.
type StructuralInsights struct {
	AvgResponseLengthSec float64 `json:"avg_response_length_sec"`
	Directness           string  `json:"directness"`
	ExplanationRatio     string  `json:"explanation_ratio"`
	SpeechRateWPM        float64 `json:"speech_rate_wpm"`
	FillerDensity        float64 `json:"filler_density"`
	PaceAssessment       string  `json:"pace_assessment"`
	ComplexityMatch      string  `json:"complexity_match"`
}

// Fit is the outcome of one evaluation.
type Fit struct {
	Audience           string             `json:"audience"`
	Focus              string             `json:"focus"`
	FitScore           int                `json:"fit_score"`
	Mismatches         []string           `json:"mismatches"`
	Suggestions        []string           `json:"suggestions"`
	StructuralInsights StructuralInsights `json:"structural_insights"`
}

// signals are the measurements every check reads.
type signals struct {
	rate          float64
	ease          float64
	fillers       int
	fillerDensity float64
	avgResponse   float64
	transcript    string
	words         int
}

// Evaluator scores results against audience profiles.
type Evaluator struct {
	readability readability.Scorer
}

// Option applies a configuration option to the Evaluator.
type Option func(*Evaluator)

// WithReadability sets the scorer used when a result carries no reading ease.
func WithReadability(r readability.Scorer) Option {
	return func(e *Evaluator) {
		if r != nil {
			e.readability = r
		}
	}
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{readability: readability.Flesch{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores result for audienceID. Unknown ids use the general profile.
func (e *Evaluator) Evaluate(result *model.Result, audienceID string) Fit {
	p, _ := Lookup(strings.ToLower(strings.TrimSpace(audienceID)))
	sig := e.measure(result)

	fit := Fit{Audience: p.ID, Focus: p.Focus, Mismatches: []string{}, Suggestions: []string{}}
	score := 100
	add := func(penalty int, mismatch, suggestion string) {
		score -= penalty
		fit.Mismatches = append(fit.Mismatches, mismatch)
		if suggestion != "" {
			fit.Suggestions = append(fit.Suggestions, suggestion)
		}
	}

	switch {
	case sig.rate < p.Pace.Min:
		add(penaltyPace,
			fmt.Sprintf("Speaking too slowly (%.0f WPM) for %s audience", sig.rate, p.ID),
			fmt.Sprintf("Increase pace to %.0f-%.0f words per minute", p.Pace.Min, p.Pace.Max))
	case sig.rate > p.Pace.Max:
		add(penaltyPace,
			fmt.Sprintf("Speaking too fast (%.0f WPM) for %s audience", sig.rate, p.ID),
			fmt.Sprintf("Slow down to %.0f-%.0f words per minute", p.Pace.Min, p.Pace.Max))
	}

	switch {
	case sig.words == 0:
		// Nothing was said, so there is no language to judge.
	case sig.ease < p.Complexity.Min:
		add(penaltyComplex,
			fmt.Sprintf("Language too complex for %s audience", p.ID),
			"Simplify vocabulary and use shorter sentences")
	case sig.ease > p.Complexity.Max && p.PenalizeSimple:
		add(penaltySimple,
			fmt.Sprintf("Language may be too simple for %s audience", p.ID),
			"Use more precise, professional terminology")
	}

	if sig.fillerDensity > fillerDensityLimit {
		add(penaltyFillers,
			fmt.Sprintf("Too many filler words (%d total)", sig.fillers),
			"Practice pausing silently instead of using 'um', 'uh', 'like'")
	}

	secondary(p.ID, sig, add)

	if len(fit.Suggestions) == 0 {
		fit.Suggestions = append(fit.Suggestions,
			fmt.Sprintf("Your delivery suits a %s audience. Keep the focus on %s.", p.ID, p.Focus))
	}

	fit.FitScore = clamp(score, 0, 100)
	fit.StructuralInsights = insights(p, sig)
	return fit
}

// secondary applies the checks unique to each audience.
func secondary(id string, sig signals, add func(int, string, string)) {
	switch id {
	case Students:
		if sig.words > 0 && sig.ease < studentsEaseFloor {
			add(penaltySecondary, "Content may be too difficult for students to follow",
				"Add examples and analogies to explain complex ideas")
		}
		if sig.rate > studentsPaceCeiling {
			add(penaltySecondary, "Pace leaves students no time to take notes",
				"Pause after each key idea so students can write it down")
		}
	case Professionals:
		if sig.rate < professionalsPace {
			add(penaltySecondary, "Pace is too slow for professional audience",
				"Professionals prefer efficient, direct communication")
		}
		if sig.avgResponse > professionalsAnswer {
			add(penaltySecondary, "Points take too long to land for professional audience",
				"Lead with the conclusion, then give the supporting detail")
		}
	case Interviews:
		if sig.avgResponse > interviewAnswerLimit {
			add(penaltyLongAnswer, "Answers are too long for interview format",
				"Use STAR method: Situation, Task, Action, Result")
		}
		if !firstPerson.MatchString(prefix(sig.transcript, firstPersonWindow)) {
			add(0, "Responses should be more personal in interviews",
				"Start with 'I' statements to show ownership")
		}
	case Marketing:
		if sig.rate < marketingPace {
			add(penaltySecondary, "Pace too slow for marketing/sales pitch",
				"Increase energy and pace to maintain excitement")
		}
		if sig.avgResponse > marketingMessage {
			add(penaltySecondary, "Messages too long - lose audience attention",
				"Keep key messages under 15 seconds")
		}
	}
}

func (e *Evaluator) measure(r *model.Result) signals {
	if r == nil {
		return signals{ease: readability.Neutral}
	}
	sig := signals{
		rate:       r.Summary.OverallSpeechRate,
		ease:       r.Summary.ReadingEase,
		fillers:    r.Summary.FillerWordCount,
		transcript: r.Transcript,
	}
	if sig.rate == 0 && r.Duration > 0 {
		sig.rate = float64(features.CountWords(r.Transcript)) / r.Duration * 60
	}
	sig.words = len(readability.Words(r.Transcript))
	switch {
	case sig.words == 0:
		sig.ease = readability.Neutral
	case sig.ease == 0:
		sig.ease = e.readability.Score(r.Transcript)
	}
	if r.Duration > 0 {
		sig.fillerDensity = float64(sig.fillers) / r.Duration * 60
	}
	if r.Transcript != "" {
		sentences := len(strings.Split(r.Transcript, "."))
		if sentences < 1 {
			sentences = 1
		}
		sig.avgResponse = r.Duration / float64(sentences)
	}
	return sig
}

func insights(p Profile, sig signals) StructuralInsights {
	si := StructuralInsights{
		AvgResponseLengthSec: round1(sig.avgResponse),
		SpeechRateWPM:        round1(sig.rate),
		FillerDensity:        round1(sig.fillerDensity),
		Directness:           "low",
		ExplanationRatio:     "low",
		PaceAssessment:       "ideal",
		ComplexityMatch:      "good match",
	}
	switch {
	case sig.rate > directHigh:
		si.Directness = "high"
	case sig.rate > directMedium:
		si.Directness = "medium"
	}
	switch {
	case sig.avgResponse > explainHigh:
		si.ExplanationRatio = "high"
	case sig.avgResponse > explainMedium:
		si.ExplanationRatio = "medium"
	}
	switch {
	case sig.rate < p.Pace.Min:
		si.PaceAssessment = "too slow"
	case sig.rate > p.Pace.Max:
		si.PaceAssessment = "too fast"
	}
	switch {
	case sig.words == 0:
		si.ComplexityMatch = "unknown"
	case sig.ease < p.Complexity.Min:
		si.ComplexityMatch = "too complex"
	case sig.ease > p.Complexity.Max:
		si.ComplexityMatch = "too simple"
	}
	return si
}

func prefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
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
