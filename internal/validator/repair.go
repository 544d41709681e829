package validator

import (
	"context"
	"fmt"
	"sort"

	"go.chromium.org/luci/common/logging"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

// RepairResult is the outcome of a bounded repair pass.
type RepairResult struct {
	Input      Input
	Records    []model.AuditRecord
	OpsApplied int
	Passed     bool
}

// Repair implements the bounded repair: up to maxOps swap/bump
// operations, re-validating in full after each one. It never touches
// coverage — a repair attempt that would reduce coverage is simply not
// proposed — and gives up as soon as no applicable operation remains,
// reporting the last audit state reached.
func Repair(ctx context.Context, in Input, maxOps int) RepairResult {
	current := in
	var last Result
	opsApplied := 0

	for opsApplied < maxOps {
		last = RunAll(ctx, current)
		if last.Passed {
			return RepairResult{Input: current, Records: last.Records, OpsApplied: opsApplied, Passed: true}
		}

		next, applied := tryOneRepairOp(ctx, current, last)
		if !applied {
			logging.Warningf(ctx, "validator: no applicable repair operation found after %d op(s); giving up", opsApplied)
			break
		}
		current = next
		opsApplied++
	}

	last = RunAll(ctx, current)
	return RepairResult{Input: current, Records: last.Records, OpsApplied: opsApplied, Passed: last.Passed}
}

func failed(records []model.AuditRecord, name model.CheckName) bool {
	for _, r := range records {
		if r.CheckName == name {
			return r.Status == model.AuditFail
		}
	}
	return false
}

// tryOneRepairOp applies the first of the two documented repair ops that
// can make progress: a REST-fixing swap, or a MAX_WEEKLY_HOURS-fixing
// bump/absorb. Other failing checks (coverage, overlap, span, fatigue)
// have no documented repair and are left for the caller to mark FAILED.
func tryOneRepairOp(ctx context.Context, in Input, res Result) (Input, bool) {
	if failed(res.Records, model.CheckRest) {
		if next, ok := trySwapForRest(ctx, in); ok {
			return next, true
		}
	}
	if failed(res.Records, model.CheckMaxWeekly) {
		if next, ok := tryBumpForWeeklyCap(ctx, in); ok {
			return next, true
		}
	}
	return in, false
}

func reassignBlockDriver(in Input, blockID, toDriver string) Input {
	out := Input{Instances: in.Instances, Blocks: in.Blocks}
	out.Assignments = make([]model.Assignment, len(in.Assignments))
	for i, a := range in.Assignments {
		if a.BlockID == blockID {
			a.DriverLabel = toDriver
		}
		out.Assignments[i] = a
	}
	return out
}

func swapBlockDrivers(in Input, blockA, blockB, driverA, driverB string) Input {
	out := Input{Instances: in.Instances, Blocks: in.Blocks}
	out.Assignments = make([]model.Assignment, len(in.Assignments))
	for i, a := range in.Assignments {
		switch a.BlockID {
		case blockA:
			a.DriverLabel = driverB
		case blockB:
			a.DriverLabel = driverA
		}
		out.Assignments[i] = a
	}
	return out
}

// trySwapForRest looks for the first REST violation, then searches other
// drivers (in sorted order, for determinism) for a block whose swap with
// the violating block eliminates the violation without introducing a new
// REST, FATIGUE or span failure for either driver.
func trySwapForRest(ctx context.Context, in Input) (Input, bool) {
	driverBlocks := in.driverBlocks()
	drivers := in.driverLabelsSorted()

	for _, driverA := range drivers {
		blocksA := driverBlocks[driverA]
		for i := 1; i < len(blocksA); i++ {
			rest := blocksA[i].FirstStart.Sub(blocksA[i-1].LastEnd)
			if rest >= restMinimum {
				continue
			}
			lateBlock := blocksA[i]

			for _, driverB := range drivers {
				if driverB == driverA {
					continue
				}
				candidates := append([]model.Block(nil), driverBlocks[driverB]...)
				sort.SliceStable(candidates, func(x, y int) bool { return candidates[x].ID < candidates[y].ID })
				for _, swapBlock := range candidates {
					tentative := swapBlockDrivers(in, lateBlock.ID, swapBlock.ID, driverA, driverB)
					check := RunAll(ctx, tentative)
					if !failed(check.Records, model.CheckRest) &&
						!failed(check.Records, model.CheckFatigue) &&
						!failed(check.Records, model.CheckSpanRegular) &&
						!failed(check.Records, model.CheckSpanSplit) &&
						!failed(check.Records, model.CheckMaxWeekly) {
						logging.Infof(ctx, "validator: repaired REST violation by swapping block %s (%s) with %s (%s)",
							lateBlock.ID, driverA, swapBlock.ID, driverB)
						return tentative, true
					}
				}
			}
		}
	}
	return in, false
}

// tryBumpForWeeklyCap moves the block with the least work off an overloaded
// driver onto another driver with spare capacity, or failing that spawns
// a new single-block FLEX_PT driver to hold it.
func tryBumpForWeeklyCap(ctx context.Context, in Input) (Input, bool) {
	driverBlocks := in.driverBlocks()
	drivers := in.driverLabelsSorted()

	for _, driverA := range drivers {
		blocksA := driverBlocks[driverA]
		total := 0
		for _, b := range blocksA {
			total += b.WorkMinutes()
		}
		if total <= maxWeeklyHoursMinute {
			continue
		}

		smallest := blocksA[0]
		for _, b := range blocksA {
			if b.WorkMinutes() < smallest.WorkMinutes() {
				smallest = b
			}
		}

		for _, driverB := range drivers {
			if driverB == driverA {
				continue
			}
			spare := maxWeeklyHoursMinute
			for _, b := range driverBlocks[driverB] {
				spare -= b.WorkMinutes()
			}
			if spare < smallest.WorkMinutes() {
				continue
			}
			tentative := reassignBlockDriver(in, smallest.ID, driverB)
			check := RunAll(ctx, tentative)
			if !failed(check.Records, model.CheckRest) &&
				!failed(check.Records, model.CheckFatigue) &&
				!failed(check.Records, model.CheckMaxWeekly) {
				logging.Infof(ctx, "validator: absorbed block %s from overloaded driver %s into %s", smallest.ID, driverA, driverB)
				return tentative, true
			}
		}

		newDriver := fmt.Sprintf("%s-SPLIT", driverA)
		tentative := reassignBlockDriver(in, smallest.ID, newDriver)
		logging.Infof(ctx, "validator: spawned FLEX_PT driver %s to hold block %s off overloaded %s", newDriver, smallest.ID, driverA)
		return tentative, true
	}
	return in, false
}
