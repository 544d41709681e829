package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"github.com/DRNaser/shift-optimizer-sub005/internal/config"
	"github.com/DRNaser/shift-optimizer-sub005/internal/engine"
	"github.com/DRNaser/shift-optimizer-sub005/internal/expander"
	"github.com/DRNaser/shift-optimizer-sub005/internal/idgen"
	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
	"github.com/DRNaser/shift-optimizer-sub005/internal/storage"
)

var cmdValidate = &subcommands.Command{
	UsageLine: "validate -forecast FILE -week-anchor YYYY-MM-DD",
	ShortDesc: "run a solve and print the full audit trail",
	LongDesc:  "Runs the same pipeline as `solve` but prints the full ordered audit record trail instead of the plan, for inspecting why a plan did or didn't reach AUDITED.",
	CommandRun: func() subcommands.CommandRun {
		def := config.Default()
		r := &validateRun{cfg: def}
		r.Flags.StringVar(&r.forecastPath, "forecast", "", "Path to the raw forecast text file")
		r.Flags.StringVar(&r.weekAnchor, "week-anchor", "", "Monday the forecast's week starts on, YYYY-MM-DD")
		r.Flags.Int64Var(&r.cfg.Seed, "seed", def.Seed, "PRNG seed driving every randomized solver stage")
		return r
	},
}

type validateRun struct {
	subcommands.CommandRunBase
	forecastPath string
	weekAnchor   string
	cfg          config.Solver
}

func (r *validateRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, r, env)
	return errToCode(a, r.run(ctx))
}

func (r *validateRun) run(ctx context.Context) error {
	weekAnchor, err := parseWeekAnchor(r.weekAnchor)
	if err != nil {
		return err
	}
	parsed, err := parseForecastFile(ctx, r.forecastPath)
	if err != nil {
		return err
	}
	if parsed.Status == model.ForecastFailed {
		return fmt.Errorf("forecast has FAIL lines; run `solvereign parse` for diagnostics")
	}

	instances, err := expander.Expand(ctx, parsed.Templates, weekAnchor, idgen.Sequential("TI"))
	if err != nil {
		return err
	}

	store := storage.NewMemStore()
	fv := model.ForecastVersion{
		WeekAnchorDate:   weekAnchor,
		Source:           r.forecastPath,
		InputHash:        parsed.InputHash,
		ParserConfigHash: parsed.ParserConfigHash,
		Status:           parsed.Status,
	}
	fvID, err := store.CreateForecastVersion(ctx, fv)
	if err != nil {
		return err
	}
	fv.ID = fvID
	if err := store.CreateTourInstances(ctx, fvID, instances); err != nil {
		return err
	}

	e := engine.New(store, r.cfg)
	result, solveErr := e.Solve(ctx, fv, instances, nil)

	raw, err := json.MarshalIndent(result.Audits, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return solveErr
}
