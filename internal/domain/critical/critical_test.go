package critical_test

import (
	"strings"
	"testing"

	"github.com/okian/attnrisk/internal/domain/critical"
	"github.com/okian/attnrisk/internal/domain/features"
	"github.com/okian/attnrisk/internal/domain/model"
	"github.com/okian/attnrisk/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func point(sec float64, risk int, codes ...string) model.TimelinePoint {
	p := model.TimelinePoint{Time: "0:00", TimeSeconds: sec, Risk: risk}
	for _, c := range codes {
		p.Findings = append(p.Findings, model.Finding{Code: c, Message: c + " message"})
	}
	return p
}

func labeledCount(tl []model.TimelinePoint) int {
	n := 0
	for _, p := range tl {
		if p.Critical {
			n++
			So(p.Label, ShouldEqual, critical.Label)
		}
	}
	return n
}

func TestSelectFromCandidates(t *testing.T) {
	Convey("Given a timeline with two tied high-risk candidates", t, func() {
		scored := scoring.Scored{
			Timeline: []model.TimelinePoint{
				point(0, 20),
				point(5, 85, "low energy"),
				point(10, 85, "complex language"),
				point(15, 90),
			},
			Candidates: []scoring.Candidate{
				{Index: 1, End: 15, Description: "first"},
				{Index: 2, End: 20, Description: "second"},
			},
		}
		sel := critical.New().Select(features.Set{Duration: 20}, scored)

		Convey("Then the earliest maximum candidate wins", func() {
			So(sel.Found, ShouldBeTrue)
			So(sel.Index, ShouldEqual, 1)
			So(sel.Moment.Description, ShouldEqual, "first")
			So(sel.Moment.Risk, ShouldEqual, "85%")
			So(sel.Moment.RiskValue, ShouldEqual, 85)
			So(sel.Moment.Reasons, ShouldResemble, []string{"low energy"})
		})

		Convey("Then exactly one point is labeled and the input is untouched", func() {
			So(labeledCount(sel.Timeline), ShouldEqual, 1)
			So(sel.Timeline[1].Critical, ShouldBeTrue)
			So(scored.Timeline[1].Critical, ShouldBeFalse)
		})
	})
}

func TestSelectRelativeMaximum(t *testing.T) {
	Convey("Given no candidates and a quiet timeline", t, func() {
		scored := scoring.Scored{Timeline: []model.TimelinePoint{
			point(0, 20), point(5, 35, "speaking too slow"), point(10, 35), point(15, 20),
		}}
		sel := critical.New().Select(features.Set{Duration: 12}, scored)

		Convey("Then the earliest maximum is chosen with a clipped end", func() {
			So(sel.Index, ShouldEqual, 1)
			So(sel.Moment.End, ShouldEqual, "0:12")
			So(sel.Moment.Reasons, ShouldResemble, []string{"speaking too slow"})
			So(sel.Moment.Description, ShouldContainSubstring, "highest risk point")
		})
	})
}

func TestSoftReasons(t *testing.T) {
	Convey("Given a flat timeline", t, func() {
		flat := scoring.Scored{Timeline: []model.TimelinePoint{point(0, 20), point(10, 20)}}

		Convey("When the covering segment is sparse", func() {
			set := features.Build(features.Input{
				Transcript: model.Transcript{Segments: []model.TranscriptSegment{{Text: "just a few words", Start: 0, End: 4}}},
				Acoustics:  model.Acoustics{Duration: 10},
			})
			sel := critical.New().Select(set, flat)
			So(sel.Moment.Reasons, ShouldResemble, []string{critical.SoftSlow})
			So(sel.Moment.DetailedProblems, ShouldHaveLength, 1)
		})

		Convey("When the covering segment is long and fast", func() {
			text := strings.TrimSpace(strings.Repeat("word ", 45))
			set := features.Build(features.Input{
				Transcript: model.Transcript{Segments: []model.TranscriptSegment{{Text: text, Start: 0, End: 9}}},
				Acoustics:  model.Acoustics{Duration: 10},
			})
			sel := critical.New().Select(set, flat)
			So(sel.Moment.Reasons, ShouldResemble, []string{critical.SoftFast, critical.SoftLong})
		})

		Convey("When the pace sits in the comfortable band", func() {
			text := strings.TrimSpace(strings.Repeat("word ", 25))
			set := features.Build(features.Input{
				Transcript: model.Transcript{Segments: []model.TranscriptSegment{{Text: text, Start: 0, End: 9}}},
				Acoustics:  model.Acoustics{Duration: 10},
			})
			sel := critical.New().Select(set, flat)
			So(sel.Moment.Reasons, ShouldResemble, []string{critical.SoftEnergyDip})
		})

		Convey("When nothing covers the point", func() {
			sel := critical.New().Select(features.Set{Duration: 10}, flat)
			So(sel.Moment.Reasons, ShouldResemble, []string{critical.SoftEnergyDip})
			So(labeledCount(sel.Timeline), ShouldEqual, 1)
		})
	})
}

func TestEmptyTimeline(t *testing.T) {
	Convey("Given an empty timeline", t, func() {
		sel := critical.New().Select(features.Set{}, scoring.Scored{})
		So(sel.Found, ShouldBeFalse)
		So(sel.Moment.Risk, ShouldEqual, "Low")
		So(sel.Moment.Start, ShouldEqual, "0:00")
		So(sel.Timeline, ShouldBeEmpty)
	})
}
