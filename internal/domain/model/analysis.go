// Package model contains domain models passed between layers.
package model

import "encoding/json"

// TranscriptSegment is one time-aligned piece of the transcript.
type TranscriptSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"` // seconds
	End   float64 `json:"end"`   // seconds
}

// Duration returns the segment length in seconds.
func (s TranscriptSegment) Duration() float64 {
	return s.End - s.Start
}

// Transcript is the output of speech-to-text.
type Transcript struct {
	Text     string              `json:"text"`
	Segments []TranscriptSegment `json:"segments"`
	Language string              `json:"language,omitempty"`
}

// SilenceInterval is a gap between two voiced runs.
type SilenceInterval struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

// Contains reports whether t falls inside the interval (inclusive).
func (s SilenceInterval) Contains(t float64) bool {
	return s.Start <= t && t <= s.End
}

// Acoustics bundles the energy envelope and the silences derived from it.
type Acoustics struct {
	Energy     []float64         `json:"-"`
	Silences   []SilenceInterval `json:"silences"`
	Duration   float64           `json:"duration"`
	SampleRate int               `json:"sample_rate"`
}

// Finding is a single fired check on a timeline point: its reason code,
// the penalty it contributed and a self-contained explanation.
type Finding struct {
	Code    string `json:"code"`
	Penalty int    `json:"penalty"`
	Message string `json:"message"`
}

// TimelinePoint is one sampled instant of the risk timeline.
type TimelinePoint struct {
	Time        string
	TimeSeconds float64
	Risk        int
	Findings    []Finding
	SegmentText string
	Critical    bool
	Label       string
}

// Reasons projects the reason codes in firing order.
func (p TimelinePoint) Reasons() []string {
	out := make([]string, 0, len(p.Findings))
	for _, f := range p.Findings {
		out = append(out, f.Code)
	}
	return out
}

// Problems projects the human-readable messages in firing order.
func (p TimelinePoint) Problems() []string {
	out := make([]string, 0, len(p.Findings))
	for _, f := range p.Findings {
		out = append(out, f.Message)
	}
	return out
}

type timelinePointJSON struct {
	Time             string   `json:"time"`
	TimeSeconds      float64  `json:"time_seconds"`
	Risk             int      `json:"risk"`
	Reasons          []string `json:"reasons"`
	DetailedProblems []string `json:"detailed_problems"`
	SegmentText      string   `json:"segment_text,omitempty"`
	Critical         bool     `json:"critical,omitempty"`
	Label            string   `json:"label,omitempty"`
}

// MarshalJSON renders reasons and problems as parallel lists for clients.
func (p TimelinePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(timelinePointJSON{
		Time:             p.Time,
		TimeSeconds:      p.TimeSeconds,
		Risk:             p.Risk,
		Reasons:          p.Reasons(),
		DetailedProblems: p.Problems(),
		SegmentText:      p.SegmentText,
		Critical:         p.Critical,
		Label:            p.Label,
	})
}

// CriticalMoment describes the single worst point of a recording.
type CriticalMoment struct {
	Start            string   `json:"start"`
	End              string   `json:"end"`
	Risk             string   `json:"risk"`
	Description      string   `json:"description"`
	Reasons          []string `json:"reasons"`
	DetailedProblems []string `json:"detailed_problems"`
	SegmentText      string   `json:"segment_text"`
	RiskValue        int      `json:"risk_value"`
}

// Suggestion is one actionable piece of advice.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Insight is a short titled observation.
type Insight struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

// Insights groups the fixed summary insight tiles.
type Insights struct {
	Jargon      Insight `json:"jargon"`
	Explanation Insight `json:"explanation"`
	Monotone    Insight `json:"monotone"`
	Fillers     Insight `json:"fillers"`
}

// ProblematicSection is the headline problem shown to the user.
type ProblematicSection struct {
	Range       string `json:"range"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// JargonLevel buckets the global reading ease.
type JargonLevel string

// Jargon density buckets.
const (
	JargonLow      JargonLevel = "Low"
	JargonMedium   JargonLevel = "Medium"
	JargonHigh     JargonLevel = "High"
	JargonVeryHigh JargonLevel = "VeryHigh"
)

// Label returns the display form of the level.
func (j JargonLevel) Label() string {
	if j == JargonVeryHigh {
		return "Very High"
	}
	return string(j)
}

// Summary is the recording-wide digest of an analysis.
type Summary struct {
	DropRisk           string             `json:"drop_risk"`
	JargonDensity      JargonLevel        `json:"jargon_density"`
	FillerWordCount    int                `json:"filler_words"`
	OverallSpeechRate  float64            `json:"speech_rate"`
	ReadingEase        float64            `json:"reading_ease"`
	Suggestions        []Suggestion       `json:"suggestions"`
	ProblematicSection ProblematicSection `json:"problematic_section"`
	Insights           Insights           `json:"insights"`
}

// Result is the stored outcome of one completed analysis. It is never
// mutated after it has been attached to a job.
type Result struct {
	CriticalMoments []CriticalMoment    `json:"drop_risks"`
	Timeline        []TimelinePoint     `json:"timeline"`
	Summary         Summary             `json:"summary"`
	Segments        []TranscriptSegment `json:"segments"`
	Transcript      string              `json:"transcript"`
	Duration        float64             `json:"duration"`
	FillerPattern   string              `json:"filler_pattern"`
}
