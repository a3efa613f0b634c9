// Package advice turns the critical moment and recording-wide aggregates
// into ordered suggestions and the rest of the analysis summary.
package advice

import (
	"fmt"
	"strings"

	"github.com/okian/attnrisk/internal/domain/features"
	"github.com/okian/attnrisk/internal/domain/model"
	"github.com/okian/attnrisk/internal/domain/readability"
	"github.com/okian/attnrisk/internal/domain/timeline"
)

// Default list bounds.
const (
	DefaultMaxSuggestions = 5
	DefaultMinSuggestions = 3
)

// Thresholds on recording-wide aggregates.
const (
	paceSlow         = 110.0
	paceFast         = 180.0
	paceIdealMin     = 140.0
	paceIdealMax     = 160.0
	fillerEliminate  = 3.0
	fillerReduce     = 1.5
	flatVariation    = 0.25
	lowEnergyPercent = 40.0
	longPattern      = 2
	energyPattern    = 3
	excellentFillers = 3
	clarityEase      = 50.0
	fillerPraise     = 5
)

// Input is everything the synthesizer reads.
type Input struct {
	Set       features.Set
	Moment    model.CriticalMoment
	HasMoment bool
	// HighRisk are the timeline points that crossed the high-risk threshold.
	HighRisk []model.TimelinePoint
}

// Aggregates are the recording-wide signals suggestions are drawn from.
type Aggregates struct {
	SpeechRate      float64
	FillerCount     int
	FillerDensity   float64
	EnergyMean      float64
	EnergyStd       float64
	EnergyVariation float64
	LowEnergyShare  float64
	ReadingEase     float64
	Jargon          model.JargonLevel
	Duration        float64
	// Words is the transcript word count. Language advice needs words.
	Words int
}

// AggregatesOf computes the aggregates of a feature set.
func AggregatesOf(set features.Set) Aggregates {
	agg := Aggregates{
		SpeechRate:      set.SpeechRate(),
		FillerCount:     set.FillerCount,
		FillerDensity:   set.FillerDensity(),
		EnergyMean:      set.EnergyMean,
		EnergyStd:       set.EnergyStd,
		EnergyVariation: set.EnergyVariation(),
		LowEnergyShare:  set.LowEnergyShare(),
		ReadingEase:     set.ReadingEase,
		Jargon:          JargonFor(set.ReadingEase),
		Duration:        set.Duration,
		Words:           len(readability.Words(set.Transcript)),
	}
	if agg.Words == 0 {
		agg.Jargon = model.JargonLow
	}
	return agg
}

// JargonFor buckets a reading-ease score.
func JargonFor(ease float64) model.JargonLevel {
	switch {
	case ease < 30:
		return model.JargonVeryHigh
	case ease < 50:
		return model.JargonHigh
	case ease < 70:
		return model.JargonMedium
	default:
		return model.JargonLow
	}
}

// Synthesizer builds suggestions and summaries. It is stateless.
type Synthesizer struct {
	max int
	min int
}

// Option applies a configuration option to the Synthesizer.
type Option func(*Synthesizer)

// WithLimits sets the minimum and maximum suggestion counts.
func WithLimits(minCount, maxCount int) Option {
	return func(s *Synthesizer) {
		if minCount > 0 && maxCount >= minCount {
			s.min = minCount
			s.max = maxCount
		}
	}
}

// New creates a Synthesizer.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{max: DefaultMaxSuggestions, min: DefaultMinSuggestions}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize derives the full summary.
func (s *Synthesizer) Summarize(in Input) model.Summary {
	agg := AggregatesOf(in.Set)
	sum := model.Summary{
		DropRisk:           "Low",
		JargonDensity:      agg.Jargon,
		FillerWordCount:    agg.FillerCount,
		OverallSpeechRate:  agg.SpeechRate,
		ReadingEase:        agg.ReadingEase,
		Suggestions:        s.suggest(in, agg),
		ProblematicSection: problematicSection(in),
		Insights:           insights(agg),
	}
	if in.HasMoment {
		sum.DropRisk = in.Moment.Risk
	}
	return sum
}

// Suggestions returns the ordered suggestion list alone.
func (s *Synthesizer) Suggestions(in Input) []model.Suggestion {
	return s.suggest(in, AggregatesOf(in.Set))
}

func (s *Synthesizer) suggest(in Input, agg Aggregates) []model.Suggestion {
	var out []model.Suggestion

	if in.HasMoment {
		out = append(out, criticalFix(in.Moment))
	}
	if sg, ok := paceSuggestion(agg); ok {
		out = append(out, sg)
	}
	if sg, ok := fillerSuggestion(agg); ok {
		out = append(out, sg)
	}
	if sg, ok := energySuggestion(agg); ok {
		out = append(out, sg)
	}
	if sg, ok := languageSuggestion(agg); ok {
		out = append(out, sg)
	}
	out = append(out, patternSuggestions(in.HighRisk)...)
	if len(in.HighRisk) == 0 && agg.FillerCount < excellentFillers &&
		agg.SpeechRate >= paceIdealMin && agg.SpeechRate <= paceIdealMax {
		out = append(out, model.Suggestion{
			Title: "Excellent Overall Performance",
			Description: fmt.Sprintf("Strong fundamentals: Good pace (%.0f wpm), minimal fillers, clear language. "+
				"To reach expert level: Add more vocal variety and strategic pauses for emphasis.", agg.SpeechRate),
		})
	}

	for i := 0; len(out) < s.min && i < len(fallbacks); i++ {
		out = append(out, model.Suggestion{Title: fallbacks[i].title, Description: fallbacks[i].description})
	}
	if len(out) > s.max {
		out = out[:s.max]
	}
	return out
}

func criticalFix(m model.CriticalMoment) model.Suggestion {
	tpl := fixTemplates[Dominant(m.Reasons)]
	problem := tpl.fallbackProblem
	if len(m.DetailedProblems) > 0 {
		problem = m.DetailedProblems[0]
	}
	return model.Suggestion{
		Title:       "Fix Critical Moment at " + m.Start,
		Description: fmt.Sprintf("This is your BIGGEST PROBLEM: %s\n\nWhat to do: %s", problem, tpl.action),
	}
}

func paceSuggestion(agg Aggregates) (model.Suggestion, bool) {
	switch {
	case agg.SpeechRate < paceSlow:
		return model.Suggestion{
			Title: "Increase Your Speaking Pace",
			Description: fmt.Sprintf("You're speaking at %.0f words/minute (optimal: 140-160 wpm). Slow pace causes attention drift. "+
				"TIP: Practice with a metronome app, aim for 150 wpm. Mark your script to speed up boring sections.", agg.SpeechRate),
		}, true
	case agg.SpeechRate > paceFast:
		return model.Suggestion{
			Title: "Slow Down Your Delivery",
			Description: fmt.Sprintf("You're speaking at %.0f words/minute (optimal: 140-160 wpm). Too fast makes comprehension difficult. "+
				"TIP: Add deliberate pauses after key points. Breathe between sentences.", agg.SpeechRate),
		}, true
	case agg.SpeechRate >= paceIdealMin && agg.SpeechRate <= paceIdealMax:
		return model.Suggestion{
			Title: "Perfect Speaking Pace",
			Description: fmt.Sprintf("Your %.0f wpm is in the optimal range (140-160 wpm). "+
				"This pace maximizes comprehension and engagement. Keep it up!", agg.SpeechRate),
		}, true
	}
	return model.Suggestion{}, false
}

func fillerSuggestion(agg Aggregates) (model.Suggestion, bool) {
	switch {
	case agg.FillerDensity > fillerEliminate:
		return model.Suggestion{
			Title: "Eliminate Filler Words",
			Description: fmt.Sprintf("You're using %.1f filler words per minute (%d total). This screams nervousness. "+
				"SOLUTION: (1) Record yourself daily for 2 minutes, (2) Count fillers, (3) Replace with 1-second silence. "+
				"Goal: Under 2 fillers/minute.", agg.FillerDensity, agg.FillerCount),
		}, true
	case agg.FillerDensity > fillerReduce:
		return model.Suggestion{
			Title: "Reduce Filler Words",
			Description: fmt.Sprintf("Detected %.1f fillers/minute (%d total). Noticeable but fixable. "+
				"TIP: When you feel 'um' coming, pause instead. Silence is powerful. "+
				"Practice the 'pause technique' for 5 minutes daily.", agg.FillerDensity, agg.FillerCount),
		}, true
	case agg.FillerCount > 0:
		return model.Suggestion{
			Title: "Minimal Filler Words",
			Description: fmt.Sprintf("Only %d filler words in %.0f seconds. Excellent control! "+
				"You sound confident and prepared.", agg.FillerCount, agg.Duration),
		}, true
	}
	return model.Suggestion{}, false
}

func energySuggestion(agg Aggregates) (model.Suggestion, bool) {
	switch {
	case agg.EnergyVariation < flatVariation:
		return model.Suggestion{
			Title: "Add Vocal Variety & Energy",
			Description: fmt.Sprintf("Your vocal energy is too flat (%.0f%% of speech is monotone). "+
				"EXERCISE: Read your script aloud, marking words to EMPHASIZE, whisper, or shout. "+
				"Vary pitch every 15 seconds. Record and compare.", agg.LowEnergyShare),
		}, true
	case agg.LowEnergyShare > lowEnergyPercent:
		return model.Suggestion{
			Title: "Boost Energy Levels",
			Description: fmt.Sprintf("%.0f%% of your speech has low energy. Audience hears this as boredom. "+
				"QUICK FIX: Stand up while recording, smile (it changes your voice), "+
				"and imagine you're talking to an excited friend.", agg.LowEnergyShare),
		}, true
	}
	return model.Suggestion{}, false
}

func languageSuggestion(agg Aggregates) (model.Suggestion, bool) {
	if agg.Words == 0 {
		return model.Suggestion{}, false
	}
	switch agg.Jargon {
	case model.JargonVeryHigh:
		return model.Suggestion{
			Title: "Drastically Simplify Language",
			Description: fmt.Sprintf("Readability score: %.0f/100 (Very Hard). You're losing 80%% of listeners. "+
				"ACTION: (1) Replace jargon with everyday words, (2) Use the 'explain to a 12-year-old' test, "+
				"(3) Add analogies for complex ideas.", agg.ReadingEase),
		}, true
	case model.JargonHigh:
		return model.Suggestion{
			Title: "Simplify Your Language",
			Description: fmt.Sprintf("Readability score: %.0f/100 (Hard). Define technical terms when first used. "+
				"RULE: If a word has 4+ syllables, explain it or replace it. Add real-world examples.", agg.ReadingEase),
		}, true
	case model.JargonMedium:
		return model.Suggestion{
			Title: "Good Language Balance",
			Description: fmt.Sprintf("Readability score: %.0f/100 (Moderate). Good balance of clarity and depth. "+
				"Consider adding one concrete example for each abstract concept.", agg.ReadingEase),
		}, true
	}
	return model.Suggestion{}, false
}

// patternSuggestions looks at the issue family that recurs most across
// high-risk points and, when it is long explanations or energy drops,
// suggests a fix for that pattern only. Each point counts at most once per
// family; ties go to the family seen first.
func patternSuggestions(points []model.TimelinePoint) []model.Suggestion {
	counts := map[Category]int{}
	var order []Category
	for _, p := range points {
		seen := map[Category]bool{}
		for _, code := range p.Reasons() {
			c := Classify(code)
			switch c {
			case CategoryFiller, CategoryComplexity, CategoryLength, CategoryEnergy:
			default:
				continue
			}
			if seen[c] {
				continue
			}
			seen[c] = true
			if counts[c] == 0 {
				order = append(order, c)
			}
			counts[c]++
		}
	}
	if len(order) == 0 {
		return nil
	}

	top := order[0]
	for _, c := range order[1:] {
		if counts[c] > counts[top] {
			top = c
		}
	}

	switch n := counts[top]; {
	case top == CategoryLength && n >= longPattern:
		return []model.Suggestion{{
			Title: "Break Up Long Explanations",
			Description: fmt.Sprintf("You have %d sections with long, unbroken explanations. "+
				"FORMULA: Explain (15 sec) -> Example (10 sec) -> Pause (2 sec) -> Repeat. "+
				"Use 'For instance...' to transition to examples.", n),
		}}
	case top == CategoryEnergy && n >= energyPattern:
		return []model.Suggestion{{
			Title: "Energy Drops Repeatedly",
			Description: fmt.Sprintf("Your energy drops %d times. Pattern detected: You lose energy during explanations. "+
				"FIX: Mark your script with 'ENERGY!' reminders before complex sections. Take a breath and amp up.", n),
		}}
	}
	return nil
}

func problematicSection(in Input) model.ProblematicSection {
	if !in.HasMoment {
		return model.ProblematicSection{
			Range:       "N/A",
			Title:       "No Serious Problems Found",
			Description: "Your speech looks good! No major issues that would cause your audience to lose attention.",
		}
	}

	m := in.Moment
	tpl := sectionTemplates[Dominant(m.Reasons)]
	var desc string
	if len(m.DetailedProblems) > 0 {
		desc = strings.Join(m.DetailedProblems, " ") +
			"\n\nThis is the biggest problem in your speech - fix this first to keep your audience engaged."
	} else {
		desc = tpl.description
		if desc == "" {
			desc = m.Description
		}
		if desc == "" {
			desc = "There's a problem here that might cause your audience to lose attention."
		}
		desc += "\n\nThis is your biggest problem - fix this to improve your speech."
	}
	return model.ProblematicSection{
		Range:       m.Start + " - " + m.End,
		Title:       tpl.title,
		Description: desc,
	}
}

func insights(agg Aggregates) model.Insights {
	clarity := "Good clarity!"
	switch {
	case agg.Words == 0:
		clarity = "No speech detected."
	case agg.ReadingEase < clarityEase:
		clarity = "Consider simplifying."
	}
	fillers := "Great job!"
	if agg.FillerCount >= fillerPraise {
		fillers = "Try to reduce usage of 'um', 'like', etc."
	}
	return model.Insights{
		Jargon: model.Insight{
			Title: agg.Jargon.Label() + " Jargon Density",
			Desc:  fmt.Sprintf("Readability score: %.1f. %s", agg.ReadingEase, clarity),
		},
		Explanation: model.Insight{
			Title: "Speech Duration",
			Desc:  "Total duration: " + timeline.Clock(agg.Duration),
		},
		Monotone: model.Insight{
			Title: "Energy Analysis",
			Desc:  fmt.Sprintf("Average energy: %.3f, variation: %.3f", agg.EnergyMean, agg.EnergyStd),
		},
		Fillers: model.Insight{
			Title: fmt.Sprintf("%d Filler Words", agg.FillerCount),
			Desc:  fillers,
		},
	}
}
