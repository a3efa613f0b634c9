// Package timeline partitions a recording into evenly spaced sample instants.
package timeline

import (
	"fmt"
	"math"
)

// Sampling bounds.
const (
	MinPoints       = 20
	MaxPoints       = 60
	SecondsPerPoint = 5.0
)

// Instant is one sampled position of the recording.
type Instant struct {
	Seconds float64
	Clock   string
}

// Count returns how many instants a recording of d seconds is sampled at.
func Count(d float64) int {
	if d <= 0 || math.IsNaN(d) {
		return MinPoints
	}
	n := int(math.Round(d / SecondsPerPoint))
	if n < MinPoints {
		return MinPoints
	}
	if n > MaxPoints {
		return MaxPoints
	}
	return n
}

// Sample returns Count(d) instants spread evenly over [0, d]. The first
// instant is always 0 and the last is exactly d.
func Sample(d float64) []Instant {
	if d < 0 || math.IsNaN(d) {
		d = 0
	}
	n := Count(d)
	out := make([]Instant, n)
	if n == 1 {
		out[0] = Instant{Seconds: 0, Clock: Clock(0)}
		return out
	}
	for i := range out[:n-1] {
		t := d * float64(i) / float64(n-1)
		out[i] = Instant{Seconds: t, Clock: Clock(t)}
	}
	out[n-1] = Instant{Seconds: d, Clock: Clock(d)}
	return out
}

// Clock formats seconds as M:SS, truncating fractions.
func Clock(sec float64) string {
	if sec < 0 || math.IsNaN(sec) {
		sec = 0
	}
	whole := int(sec)
	return fmt.Sprintf("%d:%02d", whole/60, whole%60)
}

// Range formats two instants as "M:SS - M:SS".
func Range(start, end float64) string {
	return Clock(start) + " - " + Clock(end)
}
