package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/attnrisk/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestStatusTransitions(t *testing.T) {
	convey.Convey("Given the job status lifecycle", t, func() {
		convey.Convey("Then forward transitions are allowed", func() {
			convey.So(model.StatusQueued.CanTransition(model.StatusProcessing), convey.ShouldBeTrue)
			convey.So(model.StatusProcessing.CanTransition(model.StatusProcessing), convey.ShouldBeTrue)
			convey.So(model.StatusProcessing.CanTransition(model.StatusDone), convey.ShouldBeTrue)
			convey.So(model.StatusProcessing.CanTransition(model.StatusFailed), convey.ShouldBeTrue)
		})

		convey.Convey("Then terminal states never revert", func() {
			for _, next := range []model.Status{model.StatusQueued, model.StatusProcessing, model.StatusDone, model.StatusFailed} {
				convey.So(model.StatusDone.CanTransition(next), convey.ShouldBeFalse)
				convey.So(model.StatusFailed.CanTransition(next), convey.ShouldBeFalse)
			}
			convey.So(model.StatusDone.Terminal(), convey.ShouldBeTrue)
			convey.So(model.StatusQueued.Terminal(), convey.ShouldBeFalse)
		})

		convey.Convey("Then a processing job cannot go back to queued", func() {
			convey.So(model.StatusProcessing.CanTransition(model.StatusQueued), convey.ShouldBeFalse)
		})
	})
}

func TestTimelinePointProjection(t *testing.T) {
	convey.Convey("Given a timeline point with two findings", t, func() {
		p := model.TimelinePoint{
			Time: "0:05",
			Risk: 55,
			Findings: []model.Finding{
				{Code: "speaking too fast", Penalty: 20, Message: "fast"},
				{Code: "low energy", Penalty: 20, Message: "quiet"},
			},
		}

		convey.Convey("Then reasons and problems keep firing order", func() {
			convey.So(p.Reasons(), convey.ShouldResemble, []string{"speaking too fast", "low energy"})
			convey.So(p.Problems(), convey.ShouldResemble, []string{"fast", "quiet"})
		})

		convey.Convey("Then JSON exposes the projected lists", func() {
			raw, err := json.Marshal(p)
			convey.So(err, convey.ShouldBeNil)
			var decoded map[string]any
			convey.So(json.Unmarshal(raw, &decoded), convey.ShouldBeNil)
			convey.So(decoded["reasons"], convey.ShouldResemble, []any{"speaking too fast", "low energy"})
			convey.So(decoded["detailed_problems"], convey.ShouldResemble, []any{"fast", "quiet"})
			convey.So(decoded["risk"], convey.ShouldEqual, 55.0)
		})
	})
}
