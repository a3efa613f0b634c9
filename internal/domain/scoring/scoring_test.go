package scoring_test

import (
	"strings"
	"testing"

	"github.com/okian/attnrisk/internal/domain/features"
	"github.com/okian/attnrisk/internal/domain/model"
	"github.com/okian/attnrisk/internal/domain/scoring"
	"github.com/okian/attnrisk/internal/domain/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

// fixedEase is a readability scorer returning a constant.
type fixedEase float64

func (f fixedEase) Score(string) float64 { return float64(f) }

func words(n int, w string) string {
	return strings.TrimSpace(strings.Repeat(w+" ", n))
}

func codes(p model.TimelinePoint) []string { return p.Reasons() }

func TestScorePace(t *testing.T) {
	Convey("Given a 60 word segment spanning 10 seconds", t, func() {
		set := features.Build(features.Input{
			Transcript: model.Transcript{Segments: []model.TranscriptSegment{{Text: words(60, "word"), Start: 0, End: 10}}},
			Acoustics:  model.Acoustics{Duration: 10},
		})
		s := scoring.New(scoring.WithReadability(fixedEase(80)))

		p := s.Point(set, timeline.Instant{Seconds: 5, Clock: "0:05"})

		Convey("Then the way-too-fast and length checks fire", func() {
			So(codes(p), ShouldResemble, []string{scoring.CodeWayTooFast, scoring.CodeExtremeLength})
			So(p.Findings[0].Penalty, ShouldEqual, 35)
			So(p.Findings[0].Message, ShouldContainSubstring, "360 words per minute")
			So(p.Risk, ShouldEqual, 20+35+30)
			So(p.SegmentText, ShouldEqual, words(60, "word"))
		})
	})

	Convey("Given a slow segment", t, func() {
		set := features.Build(features.Input{
			Transcript: model.Transcript{Segments: []model.TranscriptSegment{{Text: words(10, "hello"), Start: 0, End: 6}}},
			Acoustics:  model.Acoustics{Duration: 6},
		})
		p := scoring.New(scoring.WithReadability(fixedEase(80))).Point(set, timeline.Instant{Seconds: 3})

		Convey("Then only the slow tier fires", func() {
			So(codes(p), ShouldResemble, []string{scoring.CodeTooSlow})
			So(p.Risk, ShouldEqual, 35)
		})
	})

	Convey("Given a segment of half a second", t, func() {
		set := features.Build(features.Input{
			Transcript: model.Transcript{Segments: []model.TranscriptSegment{{Text: "one two three four five six", Start: 1, End: 1.5}}},
			Acoustics:  model.Acoustics{Duration: 2},
		})
		p := scoring.New(scoring.WithReadability(fixedEase(80))).Point(set, timeline.Instant{Seconds: 1.2})

		Convey("Then pace is not judged", func() {
			So(p.Findings, ShouldBeEmpty)
			So(p.Risk, ShouldEqual, 20)
		})
	})
}

func TestScoreSegmentChecks(t *testing.T) {
	Convey("Given a filler-heavy complex segment", t, func() {
		text := "um so like basically actually we considered everything carefully"
		set := features.Build(features.Input{
			Transcript: model.Transcript{Segments: []model.TranscriptSegment{{Text: text, Start: 0, End: 3}}},
			Acoustics:  model.Acoustics{Duration: 3},
		})
		p := scoring.New(scoring.WithReadability(fixedEase(25))).Point(set, timeline.Instant{Seconds: 1})

		Convey("Then fillers and complexity fire after pace", func() {
			So(codes(p), ShouldResemble, []string{scoring.CodeManyFillers, scoring.CodeComplex})
			So(p.Findings[0].Message, ShouldContainSubstring, "5 times")
			So(p.Risk, ShouldEqual, 20+30+15)
		})
	})
}

func TestScoreSilenceAndEnergy(t *testing.T) {
	Convey("Given a 7 second silence covering the instant", t, func() {
		set := features.Build(features.Input{
			Acoustics: model.Acoustics{
				Duration: 30,
				Silences: []model.SilenceInterval{{Start: 10, End: 17, Duration: 7}},
			},
		})
		p := scoring.New().Point(set, timeline.Instant{Seconds: 12})

		Convey("Then the over-6s tier fires with the measured duration", func() {
			So(codes(p), ShouldResemble, []string{"no speech detected (7.0s)"})
			So(p.Findings[0].Message, ShouldContainSubstring, "0:10 - 0:17")
			So(p.Risk, ShouldEqual, 65)
		})

		Convey("Then a tuned policy changes only the penalty", func() {
			pol := scoring.DefaultPolicy().WithSilencePenalties(65, 40)
			p := scoring.New(scoring.WithPolicy(pol)).Point(set, timeline.Instant{Seconds: 12})
			So(p.Risk, ShouldEqual, 85)
			So(scoring.DefaultPolicy().Silence[0].Penalty, ShouldEqual, 45)
		})
	})

	Convey("Given a 5 second silence", t, func() {
		set := features.Build(features.Input{Acoustics: model.Acoustics{
			Duration: 30,
			Silences: []model.SilenceInterval{{Start: 10, End: 15, Duration: 5}},
		}})
		p := scoring.New().Point(set, timeline.Instant{Seconds: 15})
		So(codes(p), ShouldResemble, []string{"long silence (5.0s)"})
		So(p.Risk, ShouldEqual, 50)
	})

	Convey("Given an envelope with a deep dip at the end", t, func() {
		energy := make([]float64, 20)
		for i := range energy {
			energy[i] = 1
		}
		energy[19] = 0
		set := features.Build(features.Input{Acoustics: model.Acoustics{Energy: energy, Duration: 20}})
		s := scoring.New()

		So(codes(s.Point(set, timeline.Instant{Seconds: 19.5})), ShouldResemble, []string{scoring.CodeExtremeLow})
		So(s.Point(set, timeline.Instant{Seconds: 2}).Findings, ShouldBeEmpty)
	})
}

func TestScoreClamp(t *testing.T) {
	Convey("Given every check stacked on one instant", t, func() {
		text := "um uh like so actually basically literally " + words(60, "word")
		energy := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 0}
		set := features.Build(features.Input{
			Transcript: model.Transcript{Segments: []model.TranscriptSegment{{Text: text, Start: 0, End: 10}}},
			Acoustics: model.Acoustics{
				Energy:   energy,
				Duration: 10,
				Silences: []model.SilenceInterval{{Start: 2, End: 10, Duration: 8}},
			},
		})
		instants := timeline.Sample(10)
		scored := scoring.New(scoring.WithReadability(fixedEase(5))).Score(set, instants)

		Convey("Then every risk stays within [0,100]", func() {
			So(scored.Timeline, ShouldHaveLength, len(instants))
			last := scored.Timeline[len(scored.Timeline)-1]
			So(last.Risk, ShouldEqual, 100)
			for _, p := range scored.Timeline {
				So(p.Risk, ShouldBeBetweenOrEqual, 0, 100)
			}
		})

		Convey("Then high-risk points become candidates with a transcript excerpt", func() {
			So(scored.Candidates, ShouldNotBeEmpty)
			c := scored.Candidates[len(scored.Candidates)-1]
			So(c.Index, ShouldEqual, len(instants)-1)
			So(c.End, ShouldEqual, 10)
			So(c.Description, ShouldContainSubstring, "\n\nTranscript: \"um uh like")
			So(c.Description, ShouldEndWith, "...\"")
		})
	})
}

func TestExcerpt(t *testing.T) {
	Convey("Given texts around the limit", t, func() {
		So(scoring.Excerpt("short", 100), ShouldEqual, "short")
		So(scoring.Excerpt(strings.Repeat("é", 101), 100), ShouldEqual, strings.Repeat("é", 100)+"...")
	})
}
