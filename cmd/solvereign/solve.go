package main

import (
	"context"
	"fmt"
	"os"

	"github.com/maruel/subcommands"
	"github.com/pkg/profile"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/logging"

	"github.com/DRNaser/shift-optimizer-sub005/internal/config"
	"github.com/DRNaser/shift-optimizer-sub005/internal/engine"
	"github.com/DRNaser/shift-optimizer-sub005/internal/expander"
	"github.com/DRNaser/shift-optimizer-sub005/internal/idgen"
	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
	"github.com/DRNaser/shift-optimizer-sub005/internal/render"
	"github.com/DRNaser/shift-optimizer-sub005/internal/storage"
)

var cmdSolve = &subcommands.Command{
	UsageLine: "solve -forecast FILE -week-anchor YYYY-MM-DD [-dsn DSN] [-migrations DIR] [-cpuprofile DIR] [options]",
	ShortDesc: "run one end-to-end solve over a forecast file",
	LongDesc:  "Parses a forecast, expands it into tour instances, and runs the block building / roster+RMP / validate+repair pipeline, printing the resulting plan as canonical JSON.",
	CommandRun: func() subcommands.CommandRun {
		def := config.Default()
		r := &solveRun{cfg: def}
		r.Flags.StringVar(&r.forecastPath, "forecast", "", "Path to the raw forecast text file")
		r.Flags.StringVar(&r.weekAnchor, "week-anchor", "", "Monday the forecast's week starts on, YYYY-MM-DD")
		r.Flags.StringVar(&r.dsn, "dsn", "", "MySQL DSN; when empty, solve runs against an in-process store")
		r.Flags.StringVar(&r.migrations, "migrations", "", "Path to schema migrations, used only with -dsn")
		r.Flags.StringVar(&r.cpuProfileDir, "cpuprofile", "", "When set, writes a CPU profile under this directory for the solve")
		r.Flags.StringVar(&r.baselinePlanID, "baseline-plan", "", "Plan ID of a prior plan to reconcile the freeze window and churn_weight against")
		r.Flags.Int64Var(&r.cfg.Seed, "seed", def.Seed, "PRNG seed driving every randomized solver stage")
		r.Flags.IntVar(&r.cfg.WeeklyHoursCapMin, "weekly-hours-cap", def.WeeklyHoursCapMin, "Per-driver weekly work cap, in minutes")
		r.Flags.IntVar(&r.cfg.FreezeWindowMinutes, "freeze-window-minutes", def.FreezeWindowMinutes, "Instances starting within this many minutes of now keep their baseline-plan assignment")
		r.Flags.IntVar(&r.cfg.TripleGapMinMinutes, "triple-gap-min", def.TripleGapMinMinutes, "Minimum inter-tour gap, in minutes, for a TWO_REG/THREE_CHAIN pairing")
		r.Flags.IntVar(&r.cfg.TripleGapMaxMinutes, "triple-gap-max", def.TripleGapMaxMinutes, "Maximum inter-tour gap, in minutes, for a TWO_REG/THREE_CHAIN pairing")
		r.Flags.IntVar(&r.cfg.SplitBreakMinMinutes, "split-break-min", def.SplitBreakMinMinutes, "Minimum unpaid break, in minutes, for a TWO_SPLIT block")
		r.Flags.IntVar(&r.cfg.SplitBreakMaxMinutes, "split-break-max", def.SplitBreakMaxMinutes, "Maximum unpaid break, in minutes, for a TWO_SPLIT block")
		r.Flags.Float64Var(&r.cfg.ChurnWeight, "churn-weight", def.ChurnWeight, "Additive RMP penalty per instance reassigned vs. the baseline plan")
		r.Flags.IntVar(&r.cfg.MaxRounds, "max-rounds", def.MaxRounds, "Maximum gap-driven pool expansion rounds")
		r.Flags.IntVar(&r.cfg.RMPTimeLimitS, "rmp-time-limit-s", def.RMPTimeLimitS, "Per-round RMP time limit, in seconds; recorded in solver_config_hash only, no per-round limit is applied")
		r.Flags.IntVar(&r.cfg.FinalTimeLimitS, "final-time-limit-s", def.FinalTimeLimitS, "Final-round time limit, in seconds; recorded in solver_config_hash only, no limit is applied (phase budgets come from the total budget)")
		r.Flags.IntVar(&r.cfg.MaxCandidatesPerDuty, "max-candidates-per-duty", def.MaxCandidatesPerDuty, "Cap on targeted-roster candidates considered per uncovered instance")
		r.Flags.IntVar(&r.cfg.NRepairOps, "n-repair-ops", def.NRepairOps, "Maximum bounded repair operations applied after the RMP solve")
		return r
	},
}

type solveRun struct {
	subcommands.CommandRunBase
	forecastPath   string
	weekAnchor     string
	dsn            string
	migrations     string
	cpuProfileDir  string
	baselinePlanID string
	cfg            config.Solver
}

func (r *solveRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, r, env)
	return errToCode(a, r.run(ctx))
}

func (r *solveRun) run(ctx context.Context) error {
	if r.cpuProfileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(r.cpuProfileDir)).Stop()
	}

	if err := r.cfg.Validate(); err != nil {
		return err
	}

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

	store, closeStore, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

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

	var priorAssignments []model.Assignment
	if r.baselinePlanID != "" {
		priorAssignments, err = store.AssignmentsByPlan(ctx, r.baselinePlanID)
		if err != nil {
			return err
		}
	}

	e := engine.New(store, r.cfg)
	result, err := e.Solve(ctx, fv, instances, priorAssignments)
	if err != nil {
		logging.Warningf(ctx, "solve did not reach AUDITED: %s", err)
	}

	raw, renderErr := render.PlanJSON(result.Plan, result.Assignments, result.KPIs)
	if renderErr != nil {
		return renderErr
	}
	fmt.Println(string(raw))
	fmt.Fprintln(os.Stderr, render.Summary(result.Plan, result.KPIs))
	return err
}

func (r *solveRun) openStore(ctx context.Context) (storage.Store, func(), error) {
	if r.dsn == "" {
		return storage.NewMemStore(), func() {}, nil
	}
	s, err := storage.OpenSQLStore(ctx, r.dsn, r.migrations)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { s.Close() }, nil
}
