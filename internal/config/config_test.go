package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/attnrisk/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.SilencePenaltyLong, convey.ShouldEqual, 45)
			convey.So(cfg.SilencePenaltyShort, convey.ShouldEqual, 30)
			convey.So(cfg.JobRetention, convey.ShouldEqual, time.Hour)
			convey.So(cfg.MaxUploadBytes(), convey.ShouldEqual, int64(200<<20))
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		cfg := config.New(context.Background())

		cases := map[string]func(c *config.Config){
			"empty addr":         func(c *config.Config) { c.Addr = "" },
			"zero queue":         func(c *config.Config) { c.QueueSize = 0 },
			"no workers":         func(c *config.Config) { c.WorkerCount = 0 },
			"no upload budget":   func(c *config.Config) { c.MaxUploadMB = 0 },
			"unknown log format": func(c *config.Config) { c.LogFormat = "xml" },
			"negative penalty":   func(c *config.Config) { c.SilencePenaltyShort = -1 },
			"zero retention":     func(c *config.Config) { c.JobRetention = 0 },
			"bad cron spec":      func(c *config.Config) { c.SweepSchedule = "every now and then" },
		}
		for name, mutate := range cases {
			convey.Convey("When it has "+name, func() {
				mutate(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Descriptors are valid sweep schedules", func() {
			cfg.SweepSchedule = "@every 1m"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
