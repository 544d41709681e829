package main

import (
	"context"
	"fmt"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
	"github.com/DRNaser/shift-optimizer-sub005/internal/storage"
	"github.com/DRNaser/shift-optimizer-sub005/internal/version"
)

var cmdLock = &subcommands.Command{
	UsageLine: "lock -dsn DSN -plan-id ID",
	ShortDesc: "lock an AUDITED plan, making it immutable",
	LongDesc:  "Performs the explicit AUDITED -> LOCKED transition against a plan previously persisted by `solve -dsn`.",
	CommandRun: func() subcommands.CommandRun {
		r := &lockRun{}
		r.Flags.StringVar(&r.dsn, "dsn", "", "MySQL DSN the plan was solved against")
		r.Flags.StringVar(&r.migrations, "migrations", "", "Path to schema migrations")
		r.Flags.StringVar(&r.planID, "plan-id", "", "PlanVersion id to lock")
		return r
	},
}

type lockRun struct {
	subcommands.CommandRunBase
	dsn        string
	migrations string
	planID     string
}

func (r *lockRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, r, env)
	return errToCode(a, r.run(ctx))
}

func (r *lockRun) run(ctx context.Context) error {
	if r.dsn == "" {
		return fmt.Errorf("-dsn is required")
	}
	if r.planID == "" {
		return fmt.Errorf("-plan-id is required")
	}

	store, err := storage.OpenSQLStore(ctx, r.dsn, r.migrations)
	if err != nil {
		return err
	}
	defer store.Close()

	plan, err := store.PlanByID(ctx, r.planID)
	if err != nil {
		return err
	}
	if err := version.Lock(ctx, &plan); err != nil {
		return err
	}
	if err := store.UpdatePlanStatus(ctx, r.planID, model.PlanLockedSt); err != nil {
		return err
	}
	fmt.Printf("plan %s locked\n", r.planID)
	return nil
}
