package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/okian/attnrisk/internal/cli"
	"github.com/okian/attnrisk/internal/domain/audience"
	"github.com/okian/attnrisk/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func result() *model.Result {
	return &model.Result{
		Duration:      30,
		FillerPattern: "Low",
		CriticalMoments: []model.CriticalMoment{{
			Start: "0:10", End: "0:15", Risk: "High", RiskValue: 75,
			Description:      "Listeners are likely to drift here.",
			DetailedProblems: []string{"Long silence of 7.0s"},
			SegmentText:      "and then we paused",
		}},
		Timeline: []model.TimelinePoint{
			{Time: "0:00", Risk: 10},
			{Time: "0:10", Risk: 75, Critical: true, Label: "Critical Drop",
				Findings: []model.Finding{{Code: "long_silence", Penalty: 45, Message: "Long silence of 7.0s"}}},
		},
		Summary: model.Summary{
			DropRisk:      "Medium",
			JargonDensity: model.JargonVeryHigh,
			Suggestions:   []model.Suggestion{{Title: "Tighten pauses", Description: "Keep silences under four seconds."}},
		},
	}
}

func TestRenderReport(t *testing.T) {
	Convey("Given an analysis result", t, func() {
		var buf bytes.Buffer

		Convey("The report should include summary, moment, timeline and suggestions", func() {
			So(cli.RenderReport(&buf, "talk.mp3", result(), nil), ShouldBeNil)
			out := buf.String()
			So(out, ShouldContainSubstring, "talk.mp3")
			So(out, ShouldContainSubstring, "Very High")
			So(out, ShouldContainSubstring, "0:10 - 0:15")
			So(out, ShouldContainSubstring, "Long silence of 7.0s")
			So(out, ShouldContainSubstring, "long_silence")
			So(out, ShouldContainSubstring, "Critical Drop")
			So(out, ShouldContainSubstring, "1. Tighten pauses")
			So(out, ShouldNotContainSubstring, "Audience fit")
		})

		Convey("An audience fit should be appended when given", func() {
			fit := &audience.Fit{Audience: "students", FitScore: 80, Mismatches: []string{"Pace too fast"}}
			So(cli.RenderReport(&buf, "talk.mp3", result(), fit), ShouldBeNil)
			out := buf.String()
			So(out, ShouldContainSubstring, "Audience fit: students")
			So(out, ShouldContainSubstring, "80/100")
			So(out, ShouldContainSubstring, "! Pace too fast")
		})

		Convey("A result without a moment should say so", func() {
			res := result()
			res.CriticalMoments = nil
			So(cli.RenderReport(&buf, "x", res, nil), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "No critical moment detected.")
		})
	})
}

func TestPrintError(t *testing.T) {
	Convey("PrintError should prefix the message", t, func() {
		var buf bytes.Buffer
		cli.PrintError(&buf, "file not found")
		So(strings.TrimSpace(buf.String()), ShouldEndWith, "file not found")
		So(buf.String(), ShouldContainSubstring, "Error:")
	})
}
