// Package engine orchestrates one end-to-end solve: BlockBuilder ->
// RosterGenerator/RMP -> Validator & Repair -> persistence, under the
// phase budget split and single-threaded-per-solve scheduling model.
package engine

import (
	"context"
	"time"

	"go.chromium.org/luci/common/clock"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
	"go.opencensus.io/trace"

	"github.com/DRNaser/shift-optimizer-sub005/internal/blockbuilder"
	"github.com/DRNaser/shift-optimizer-sub005/internal/config"
	"github.com/DRNaser/shift-optimizer-sub005/internal/idgen"
	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
	"github.com/DRNaser/shift-optimizer-sub005/internal/rmp"
	"github.com/DRNaser/shift-optimizer-sub005/internal/roster"
	"github.com/DRNaser/shift-optimizer-sub005/internal/storage"
	"github.com/DRNaser/shift-optimizer-sub005/internal/validator"
	"github.com/DRNaser/shift-optimizer-sub005/internal/version"
)

// Engine ties the solver stages to a persistence substrate.
type Engine struct {
	Store storage.Store
	Cfg   config.Solver
}

// New returns an Engine bound to store, using cfg for every solve it runs.
func New(store storage.Store, cfg config.Solver) *Engine {
	return &Engine{Store: store, Cfg: cfg}
}

// SolveResult is the complete output of one solve.
type SolveResult struct {
	Plan        model.PlanVersion
	Assignments []model.Assignment
	KPIs        model.KPIs
	Audits      []model.AuditRecord
}

// Solve runs one full pipeline pass over an already-expanded instance set
// and persists the result. It never mutates instances or the forecast;
// those are the Parser/Expander's concern upstream of this package.
// priorAssignments is the previous plan's assignment set, if any; it is
// reconciled against instances' start times and e.Cfg.FreezeWindowMinutes
// to determine which blocks are frozen and what churn_weight scores
// reassignment against. Pass nil for a plan with no prior baseline.
func (e *Engine) Solve(ctx context.Context, fv model.ForecastVersion, instances []model.TourInstance, priorAssignments []model.Assignment) (SolveResult, error) {
	ctx, span := trace.StartSpan(ctx, "solvereign.engine.Solve")
	defer span.End()

	budget := newBudget(e.Cfg.TotalBudgetSeconds)
	freezeWindow := time.Duration(e.Cfg.FreezeWindowMinutes) * time.Minute
	baseline := model.NewBaseline(priorAssignments, instances, clock.Now(ctx), freezeWindow)

	solverHash, err := e.Cfg.Hash(fv.ParserConfigHash)
	if err != nil {
		return SolveResult{}, errors.Annotate(err, "compute solver config hash").Err()
	}

	planID, err := e.Store.CreatePlanVersion(ctx, model.PlanVersion{
		ForecastVersionID: fv.ID,
		Seed:              e.Cfg.Seed,
		SolverConfigHash:  solverHash,
		Status:            model.PlanSolving,
		CreatedAt:         time.Now(),
	})
	if err != nil {
		return SolveResult{}, errors.Annotate(err, "create plan version").Err()
	}
	plan, err := e.Store.PlanByID(ctx, planID)
	if err != nil {
		return SolveResult{}, errors.Annotate(err, "load created plan version").Err()
	}

	blockCtx, blockSpan := trace.StartSpan(ctx, "blockBuilding")
	blockDeadline, cancelBlocks := context.WithTimeout(blockCtx, budget.blockBuilding)
	blocks := blockbuilder.Build(blockDeadline, instances, e.Cfg, idgen.Sequential("BLK"))
	cancelBlocks()
	blockSpan.End()
	logging.Infof(ctx, "engine: block building produced %d blocks from %d instances", len(blocks), len(instances))

	rmpCtx, rmpSpan := trace.StartSpan(ctx, "rosterAndRMP")
	rmpDeadline, cancelRMP := context.WithTimeout(rmpCtx, budget.rosterRMP)
	instanceIDs := instanceIDsOf(instances)
	pool := roster.Generate(rmpDeadline, blocks, e.Cfg, baseline)
	expanded := rmp.Expand(rmpDeadline, pool, blocks, instanceIDs, e.Cfg, baseline)
	cancelRMP()
	rmpSpan.End()

	if len(expanded.Solution.Uncovered) > 0 {
		logging.Warningf(ctx, "engine: RMP finished with %d instances uncovered after %d round(s)",
			len(expanded.Solution.Uncovered), expanded.Rounds)
		if err := version.MarkFailed(ctx, &plan, model.ErrSolverInfeasible); err != nil {
			return SolveResult{}, err
		}
		if err := e.Store.UpdatePlanStatus(ctx, planID, model.PlanFailed); err != nil {
			return SolveResult{}, errors.Annotate(err, "persist FAILED status").Err()
		}
		return SolveResult{Plan: plan}, model.ErrSolverInfeasible
	}

	if err := version.TransitionPlan(plan.Status, model.PlanDraft); err != nil {
		return SolveResult{}, err
	}
	plan.Status = model.PlanDraft
	if err := e.Store.UpdatePlanStatus(ctx, planID, model.PlanDraft); err != nil {
		return SolveResult{}, errors.Annotate(err, "persist DRAFT status").Err()
	}

	assignments := rmp.AssignDrivers(planID, expanded.Solution.Selected)

	repairCtx, repairSpan := trace.StartSpan(ctx, "validateAndRepair")
	repairDeadline, cancelRepair := context.WithTimeout(repairCtx, budget.repair)
	blockIndex := indexBlocksByID(blocks)
	repairResult := validator.Repair(repairDeadline, validator.Input{
		Instances:   instances,
		Assignments: assignments,
		Blocks:      blockIndex,
	}, e.Cfg.NRepairOps)
	cancelRepair()
	repairSpan.End()

	if !repairResult.Passed {
		logging.Warningf(ctx, "engine: repair exhausted without reaching a passing audit state")
		if err := e.Store.AppendAudit(ctx, stampPlan(planID, repairResult.Records)); err != nil {
			return SolveResult{}, errors.Annotate(err, "append failing audit records").Err()
		}
		if err := version.MarkFailed(ctx, &plan, model.ErrRepairExhausted); err != nil {
			return SolveResult{}, err
		}
		if err := e.Store.UpdatePlanStatus(ctx, planID, model.PlanFailed); err != nil {
			return SolveResult{}, errors.Annotate(err, "persist FAILED status after repair").Err()
		}
		return SolveResult{Plan: plan, Assignments: repairResult.Input.Assignments}, model.ErrRepairExhausted
	}

	finalAssignments := repairResult.Input.Assignments
	if err := e.Store.AssignmentsBatchInsert(ctx, planID, finalAssignments); err != nil {
		return SolveResult{}, errors.Annotate(err, "batch insert assignments").Err()
	}
	if err := e.Store.AppendAudit(ctx, stampPlan(planID, repairResult.Records)); err != nil {
		return SolveResult{}, errors.Annotate(err, "append passing audit records").Err()
	}

	if err := version.TransitionPlan(plan.Status, model.PlanAudited); err != nil {
		return SolveResult{}, err
	}
	plan.Status = model.PlanAudited
	if err := e.Store.UpdatePlanStatus(ctx, planID, model.PlanAudited); err != nil {
		return SolveResult{}, errors.Annotate(err, "persist AUDITED status").Err()
	}

	kpis := computeKPIs(expanded.Solution.Selected)
	outputHash := rmp.ComputeOutputHash(finalAssignments, firstBlockStartIndex(finalAssignments, blockIndex))
	if err := e.Store.UpdatePlanOutputHash(ctx, planID, outputHash); err != nil {
		return SolveResult{}, errors.Annotate(err, "persist output hash").Err()
	}
	plan.OutputHash = outputHash

	return SolveResult{
		Plan:        plan,
		Assignments: finalAssignments,
		KPIs:        kpis,
		Audits:      repairResult.Records,
	}, nil
}

func instanceIDsOf(instances []model.TourInstance) []string {
	out := make([]string, len(instances))
	for i, inst := range instances {
		out[i] = inst.ID
	}
	return out
}

func indexBlocksByID(blocks []model.Block) map[string]model.Block {
	out := make(map[string]model.Block, len(blocks))
	for _, b := range blocks {
		out[b.ID] = b
	}
	return out
}

func stampPlan(planID string, records []model.AuditRecord) []model.AuditRecord {
	out := make([]model.AuditRecord, len(records))
	for i, r := range records {
		r.PlanVersionID = planID
		out[i] = r
	}
	return out
}

func firstBlockStartIndex(assignments []model.Assignment, blocks map[string]model.Block) map[string]int64 {
	out := map[string]int64{}
	for _, a := range assignments {
		b, ok := blocks[a.BlockID]
		if !ok {
			continue
		}
		ts := b.FirstStart.Unix()
		if existing, seen := out[a.DriverLabel]; !seen || ts < existing {
			out[a.DriverLabel] = ts
		}
	}
	return out
}
