package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/okian/attnrisk/internal/adapters/acoustic"
	"github.com/okian/attnrisk/internal/adapters/transcode"
	"github.com/okian/attnrisk/internal/adapters/transcribe"
	"github.com/okian/attnrisk/internal/analysis"
	"github.com/okian/attnrisk/internal/cli"
	"github.com/okian/attnrisk/internal/config"
	"github.com/okian/attnrisk/internal/domain/scoring"
	"github.com/okian/attnrisk/pkg/logger"
)

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version information"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the HTTP analysis service"`
	Analyze AnalyzeCmd `cmd:"" help:"Analyze a single recording and print the report"`
}

// runtimeEnv is what every command receives after bootstrap.
type runtimeEnv struct {
	ctx context.Context
	cfg *config.Config
	log logger.Logger
}

func main() {
	var c CLI
	kctx := kong.Parse(&c,
		kong.Name("attnrisk"),
		kong.Description("Predicts where listeners lose attention in a spoken recording"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		cli.PrintError(os.Stderr, "failed to load config: "+err.Error())
		os.Exit(1)
	}

	// The analyze report goes to stdout, so its logs go to stderr.
	out := os.Stdout
	if kctx.Command() != "serve" {
		out = os.Stderr
	}
	if err := logger.Init(logger.WithLevel(cfg.LogLevel), logger.WithFormat(cfg.LogFormat), logger.WithOutput(out)); err != nil {
		cli.PrintError(os.Stderr, "failed to initialize logging: "+err.Error())
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	env := &runtimeEnv{ctx: ctx, cfg: cfg, log: logger.Get()}
	if err := kctx.Run(env); err != nil {
		cli.PrintError(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// collaborators builds the external adapters the pipeline runs on.
func collaborators(cfg *config.Config) (analysis.Transcoder, analysis.Transcriber, analysis.AcousticExtractor) {
	tc := transcode.New(
		transcode.WithBinary(cfg.FFmpegPath),
		transcode.WithLogger(logger.Named("ffmpeg")),
	)
	tr := transcribe.New(cfg.OpenAIAPIKey,
		transcribe.WithBaseURL(cfg.OpenAIBaseURL),
		transcribe.WithModel(cfg.WhisperModel),
		transcribe.WithLanguage(cfg.Language),
		transcribe.WithLogger(logger.Named("whisper")),
	)
	ax := acoustic.New(acoustic.WithLogger(logger.Named("acoustic")))
	return tc, tr, ax
}

// pipelineOptions applies the configured scoring policy.
func pipelineOptions(cfg *config.Config) []analysis.Option {
	policy := scoring.DefaultPolicy().WithSilencePenalties(cfg.SilencePenaltyLong, cfg.SilencePenaltyShort)
	return []analysis.Option{
		analysis.WithScorer(scoring.New(scoring.WithPolicy(policy))),
	}
}
