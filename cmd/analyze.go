package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/okian/attnrisk/internal/analysis"
	"github.com/okian/attnrisk/internal/cli"
	"github.com/okian/attnrisk/internal/domain/audience"
	"github.com/okian/attnrisk/internal/domain/model"
)

// AnalyzeCmd analyzes one local recording without the HTTP service.
type AnalyzeCmd struct {
	File     string `arg:"" type:"existingfile" help:"Recording to analyze"`
	Audience string `short:"a" help:"Also evaluate fit for this audience (students, professionals, interviews, marketing, general)"`
	JSON     bool   `help:"Print the result as JSON"`
}

// Run analyzes the file and writes the report to stdout.
func (c *AnalyzeCmd) Run(env *runtimeEnv) error {
	if c.Audience != "" {
		if _, ok := audience.Lookup(c.Audience); !ok {
			return fmt.Errorf("unknown audience %q", c.Audience)
		}
	}

	tc, tr, ax := collaborators(env.cfg)
	opts := append(pipelineOptions(env.cfg),
		analysis.WithInputCleanup(false),
		analysis.WithLogger(env.log.Named("analysis")),
	)
	res, err := analysis.NewPipeline(tc, tr, ax, opts...).Run(env.ctx, uuid.NewString(), c.File)
	if err != nil {
		return err
	}
	return c.report(os.Stdout, res)
}

func (c *AnalyzeCmd) report(w io.Writer, res *model.Result) error {
	var fit *audience.Fit
	if c.Audience != "" {
		f := audience.NewEvaluator().Evaluate(res, c.Audience)
		fit = &f
	}

	if c.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if fit != nil {
			return enc.Encode(struct {
				*model.Result
				AudienceFit *audience.Fit `json:"audience_fit"`
			}{res, fit})
		}
		return enc.Encode(res)
	}
	return cli.RenderReport(w, filepath.Base(c.File), res, fit)
}
