package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/attnrisk/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		// Convey reruns this block per leaf; start each run from a clean environment.
		clearConfigEnvVars()
		t.Setenv(config.EnvDotfile, filepath.Join(t.TempDir(), "missing.env"))

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WhisperModel, convey.ShouldEqual, "whisper-1")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("ATTNRISK_ADDR", ":8080")
			t.Setenv("ATTNRISK_QUEUE_SIZE", "8")
			t.Setenv("ATTNRISK_WORKER_COUNT", "2")
			t.Setenv("ATTNRISK_JOB_RETENTION", "15m")
			t.Setenv("ATTNRISK_OPENAI_API_KEY", "sk-test")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 8)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)
				convey.So(cfg.JobRetention, convey.ShouldEqual, 15*time.Minute)
				convey.So(cfg.OpenAIAPIKey, convey.ShouldEqual, "sk-test")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeFile(t, "config.yaml", `
addr: ":9090"
queue_size: 32
log_format: json
silence_penalty_long: 50
`)
			t.Setenv(config.EnvConfig, path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values merge with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 32)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.SilencePenaltyLong, convey.ShouldEqual, 50)
				convey.So(cfg.SilencePenaltyShort, convey.ShouldEqual, 30)
			})

			convey.Convey("And env vars take precedence over the file", func() {
				t.Setenv("ATTNRISK_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 32)
			})
		})

		convey.Convey("When a .env file is present", func() {
			dotfile := writeFile(t, ".env", "ATTNRISK_LANGUAGE=de\nATTNRISK_ADDR=:6060\n")
			t.Setenv(config.EnvDotfile, dotfile)
			t.Setenv("ATTNRISK_ADDR", ":5050")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it fills unset variables only", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Language, convey.ShouldEqual, "de")
				convey.So(cfg.Addr, convey.ShouldEqual, ":5050")
			})
		})

		convey.Convey("When the YAML file is invalid", func() {
			t.Setenv(config.EnvConfig, writeFile(t, "bad.yaml", "invalid: yaml: content: ["))

			cfg, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When the YAML file does not exist", func() {
			t.Setenv(config.EnvConfig, "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When a numeric variable is not a number", func() {
			t.Setenv("ATTNRISK_QUEUE_SIZE", "lots")

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When addr is empty", func() {
			t.Setenv("ATTNRISK_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, config.EnvPrefix) {
			_ = os.Unsetenv(name)
		}
	}
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
