package audience

// Audience identifiers.
const (
	Students      = "students"
	Professionals = "professionals"
	Interviews    = "interviews"
	Marketing     = "marketing"
	General       = "general"
)

// Range is an inclusive numeric band.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the band, boundaries included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Profile holds the tolerances of one target audience.
type Profile struct {
	ID             string `json:"id"`
	Pace           Range  `json:"ideal_wpm"`
	Complexity     Range  `json:"ideal_complexity"`
	ResponseLength Range  `json:"ideal_response_length"`
	Focus          string `json:"focus"`
	// PenalizeSimple marks audiences that lose points for overly simple language.
	PenalizeSimple bool `json:"penalize_simple"`
}

// profiles is never mutated after init; lookups return copies.
var profiles = [...]Profile{
	{ID: Students, Pace: Range{120, 150}, Complexity: Range{60, 100}, ResponseLength: Range{10, 20},
		Focus: "clarity and engagement"},
	{ID: Professionals, Pace: Range{140, 170}, Complexity: Range{40, 70}, ResponseLength: Range{15, 30},
		Focus: "efficiency and precision", PenalizeSimple: true},
	{ID: Interviews, Pace: Range{130, 160}, Complexity: Range{50, 80}, ResponseLength: Range{20, 45},
		Focus: "conciseness and structure", PenalizeSimple: true},
	{ID: Marketing, Pace: Range{150, 180}, Complexity: Range{60, 90}, ResponseLength: Range{5, 15},
		Focus: "impact and persuasion"},
	{ID: General, Pace: Range{140, 160}, Complexity: Range{60, 80}, ResponseLength: Range{10, 25},
		Focus: "accessibility and engagement"},
}

// Lookup returns the profile for id, falling back to general.
func Lookup(id string) (Profile, bool) {
	for _, p := range profiles {
		if p.ID == id {
			return p, true
		}
	}
	return profiles[len(profiles)-1], false
}

// Profiles returns a copy of the whole table in a stable order.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles[:])
	return out
}
