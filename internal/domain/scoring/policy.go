package scoring

// Tier is one threshold rule of a signal: when the measured value crosses
// Bound the point gains Penalty and a finding with Code and Message.
// Code and Message may be fmt templates, filled per signal.
type Tier struct {
	Bound   float64
	Penalty int
	Code    string
	Message string
}

// Policy is the full penalty table. It is a plain value built from arrays,
// so every copy is independent and a Scorer's table cannot change under it.
type Policy struct {
	Base     int
	MaxRisk  int
	HighRisk int // points strictly above become high-risk candidates

	// MinPaceDuration is the shortest segment, in seconds, whose pace is judged.
	MinPaceDuration float64
	// FastPace fires on wpm > Bound, checked in order.
	FastPace [2]Tier
	// SlowPace fires on wpm < Bound, checked in order, only if no FastPace tier fired.
	SlowPace [2]Tier
	// Fillers fires on count >= Bound.
	Fillers [2]Tier
	// Length fires on word count > Bound.
	Length [2]Tier
	// MinComplexityText is the minimum text length, in characters, that is rated.
	MinComplexityText int
	// Complexity fires on segment reading ease < Bound.
	Complexity [2]Tier
	// Energy fires on sample < mean - Bound*std.
	Energy [2]Tier
	// Silence fires on covering silence duration > Bound.
	Silence [2]Tier

	// CandidateSpan is how far past the point a candidate window reaches.
	CandidateSpan float64
	// ExcerptRunes caps the transcript excerpt in candidate descriptions.
	ExcerptRunes int
}

// Reason codes.
const (
	CodeWayTooFast     = "speaking way too fast"
	CodeTooFast        = "speaking too fast"
	CodeWayTooSlow     = "speaking way too slow"
	CodeTooSlow        = "speaking too slow"
	CodeManyFillers    = "too many filler words"
	CodeSomeFillers    = "several filler words"
	CodeExtremeLength  = "extremely long section"
	CodeLongSection    = "very long section"
	CodeVeryDifficult  = "very difficult language"
	CodeComplex        = "complex language"
	CodeExtremeLow     = "extremely low energy"
	CodeLowEnergy      = "low energy"
	CodeNoSpeechFormat = "no speech detected (%.1fs)"
	CodeSilenceFormat  = "long silence (%.1fs)"
)

// DefaultPolicy returns the standard penalty table. Silence uses +45 for
// gaps over 6s and +30 for gaps over 4s.
func DefaultPolicy() Policy {
	return Policy{
		Base:            20,
		MaxRisk:         100,
		HighRisk:        70,
		MinPaceDuration: 0.5,
		FastPace: [2]Tier{
			{Bound: 220, Penalty: 35, Code: CodeWayTooFast,
				Message: "You're speaking at %.0f words per minute. This is too fast - your audience can't keep up and will miss important points."},
			{Bound: 190, Penalty: 20, Code: CodeTooFast,
				Message: "You're speaking at %.0f words per minute. Slow down a bit so people can understand you better."},
		},
		SlowPace: [2]Tier{
			{Bound: 90, Penalty: 30, Code: CodeWayTooSlow,
				Message: "You're speaking at only %.0f words per minute. This is too slow - people will get bored and lose focus."},
			{Bound: 110, Penalty: 15, Code: CodeTooSlow,
				Message: "You're speaking at %.0f words per minute. Speed up a little to keep your audience engaged."},
		},
		Fillers: [2]Tier{
			{Bound: 5, Penalty: 30, Code: CodeManyFillers,
				Message: "You said 'um', 'uh', or 'like' %d times in this short section. This makes you sound unprepared and nervous."},
			{Bound: 3, Penalty: 15, Code: CodeSomeFillers,
				Message: "You used %d filler words here. Try to pause silently instead of saying 'um' or 'uh'."},
		},
		Length: [2]Tier{
			{Bound: 50, Penalty: 30, Code: CodeExtremeLength,
				Message: "This section has %d words without any break. People can't process this much information at once - they'll tune out."},
			{Bound: 40, Penalty: 15, Code: CodeLongSection,
				Message: "This %d-word section is too long. Break it into smaller parts with pauses in between."},
		},
		MinComplexityText: 20,
		Complexity: [2]Tier{
			{Bound: 20, Penalty: 30, Code: CodeVeryDifficult,
				Message: "The words you're using here are too complicated. Most people won't understand this - use simpler, everyday language."},
			{Bound: 30, Penalty: 15, Code: CodeComplex,
				Message: "This section uses complex words that might confuse your audience. Try to explain things more simply."},
		},
		Energy: [2]Tier{
			{Bound: 2.0, Penalty: 35, Code: CodeExtremeLow,
				Message: "Your voice becomes very flat and monotone here. You sound bored, so your audience will feel bored too."},
			{Bound: 1.5, Penalty: 20, Code: CodeLowEnergy,
				Message: "Your energy drops noticeably here. Try to sound more enthusiastic and vary your tone."},
		},
		Silence: [2]Tier{
			{Bound: 6, Penalty: 45, Code: CodeNoSpeechFormat,
				Message: "No speech detected from %s (%.1f seconds of silence). This is way too long - your audience will think something went wrong or lose complete focus."},
			{Bound: 4, Penalty: 30, Code: CodeSilenceFormat,
				Message: "No speech detected from %s (%.1f seconds). This pause is too long and breaks the flow - people will start checking their phones."},
		},
		CandidateSpan: 10,
		ExcerptRunes:  100,
	}
}

// WithSilencePenalties returns a copy of p using the given penalties for
// the over-6s and over-4s silence tiers.
func (p Policy) WithSilencePenalties(noSpeech, longSilence int) Policy {
	p.Silence[0].Penalty = noSpeech
	p.Silence[1].Penalty = longSilence
	return p
}
