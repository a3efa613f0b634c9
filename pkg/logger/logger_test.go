package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)
			So(Get(), ShouldNotBeNil)
			So(Sync(), ShouldBeNil)
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))
			So(err, ShouldNotBeNil)
		})

		Convey("When initialized with an unknown level", func() {
			err := Init(WithLevel("loud"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a json logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat(FormatJSON), WithOutput(&buf), WithLevel("debug")), ShouldBeNil)
		defer func() { _ = Init() }()

		Convey("When logging with fields", func() {
			Get().With(JobID("abc")).Info(context.Background(), "analysis done",
				Int("risk", 80),
				Error(errors.New("boom")),
			)

			Convey("Then the record carries every field", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "analysis done")
				So(rec["job_id"], ShouldEqual, "abc")
				So(rec["risk"], ShouldEqual, 80.0)
				So(rec["error"], ShouldEqual, "boom")
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(context.Background(), "hidden")
			So(strings.Contains(buf.String(), "hidden"), ShouldBeFalse)
		})
	})
}

func TestLoggerNamed(t *testing.T) {
	Convey("Given a named logger", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf)), ShouldBeNil)
		defer func() { _ = Init() }()

		Named("pipeline").Info(context.Background(), "started", String("stage", "transcode"))

		Convey("Then fields are grouped under the name", func() {
			So(buf.String(), ShouldContainSubstring, "pipeline.stage=transcode")
		})
	})
}
