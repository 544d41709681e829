package main

import (
	"context"
	"fmt"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"github.com/DRNaser/shift-optimizer-sub005/internal/diff"
	"github.com/DRNaser/shift-optimizer-sub005/internal/render"
)

var cmdDiff = &subcommands.Command{
	UsageLine: "diff -a FILE_A -b FILE_B",
	ShortDesc: "diff two forecast files",
	LongDesc:  "Parses two forecast files independently and prints the deterministic ADDED/REMOVED/CHANGED diff between their templates.",
	CommandRun: func() subcommands.CommandRun {
		r := &diffRun{}
		r.Flags.StringVar(&r.forecastAPath, "a", "", "Path to the first (older) forecast file")
		r.Flags.StringVar(&r.forecastBPath, "b", "", "Path to the second (newer) forecast file")
		return r
	},
}

type diffRun struct {
	subcommands.CommandRunBase
	forecastAPath string
	forecastBPath string
}

func (r *diffRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, r, env)
	return errToCode(a, r.run(ctx))
}

func (r *diffRun) run(ctx context.Context) error {
	a, err := parseForecastFile(ctx, r.forecastAPath)
	if err != nil {
		return err
	}
	b, err := parseForecastFile(ctx, r.forecastBPath)
	if err != nil {
		return err
	}

	result := diff.Compute(r.forecastAPath, r.forecastBPath, a.Templates, b.Templates)
	raw, err := render.DiffJSON(result)
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
