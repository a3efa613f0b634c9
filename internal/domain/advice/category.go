package advice

import "strings"

// Category is the family a reason code belongs to.
type Category int

// Reason families, in dominance order.
const (
	CategoryNone Category = iota
	CategoryFast
	CategorySlow
	CategorySilence
	CategoryEnergy
	CategoryFiller
	CategoryComplexity
	CategoryLength
)

// dominance lists families in the order they win when several are present.
var dominance = [...]Category{
	CategoryFast,
	CategorySlow,
	CategorySilence,
	CategoryEnergy,
	CategoryFiller,
	CategoryComplexity,
	CategoryLength,
}

// Classify returns the family of a single reason code.
func Classify(code string) Category {
	c := strings.ToLower(code)
	switch {
	case strings.Contains(c, "too fast"):
		return CategoryFast
	case strings.Contains(c, "too slow"):
		return CategorySlow
	case strings.Contains(c, "silence"), strings.Contains(c, "pause"), strings.Contains(c, "no speech"):
		return CategorySilence
	case strings.Contains(c, "energy"), strings.Contains(c, "monotone"):
		return CategoryEnergy
	case strings.Contains(c, "filler"):
		return CategoryFiller
	case strings.Contains(c, "difficult"), strings.Contains(c, "complex"):
		return CategoryComplexity
	case strings.Contains(c, "long"):
		return CategoryLength
	default:
		return CategoryNone
	}
}

// Dominant returns the highest-ranked family present in codes.
func Dominant(codes []string) Category {
	present := make(map[Category]bool, len(codes))
	for _, c := range codes {
		present[Classify(c)] = true
	}
	for _, cat := range dominance {
		if present[cat] {
			return cat
		}
	}
	return CategoryNone
}
