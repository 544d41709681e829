package main

import (
	"context"
	"fmt"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

var cmdParse = &subcommands.Command{
	UsageLine: "parse -forecast FILE",
	ShortDesc: "parse a forecast file and report per-line diagnostics",
	LongDesc:  "Runs the whitelist parser over a forecast file and prints the per-line PASS/WARN/FAIL trail plus the resulting input_hash.",
	CommandRun: func() subcommands.CommandRun {
		r := &parseRun{}
		r.Flags.StringVar(&r.forecastPath, "forecast", "", "Path to the raw forecast text file")
		return r
	},
}

type parseRun struct {
	subcommands.CommandRunBase
	forecastPath string
}

func (r *parseRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, r, env)
	return errToCode(a, r.run(ctx))
}

func (r *parseRun) run(ctx context.Context) error {
	res, err := parseForecastFile(ctx, r.forecastPath)
	if err != nil {
		return err
	}
	for _, line := range res.Lines {
		fmt.Printf("line %d: %s %q", line.LineNo, line.Status, line.Raw)
		if line.Reason != "" {
			fmt.Printf(" (%s)", line.Reason)
		}
		fmt.Println()
	}
	fmt.Printf("status=%s templates=%d input_hash=%s\n", res.Status, len(res.Templates), res.InputHash)
	if res.Status == model.ForecastFailed {
		return fmt.Errorf("forecast has FAIL lines; see diagnostics above")
	}
	return nil
}
