package rmp

import (
	"context"
	"sort"

	"go.chromium.org/luci/common/logging"

	"github.com/DRNaser/shift-optimizer-sub005/internal/config"
	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
	"github.com/DRNaser/shift-optimizer-sub005/internal/roster"
)

const maxConsecutiveStalls = 20

// ExpandResult carries the final solve plus the grown pool, so callers can
// record how many rosters gap-driven expansion actually added.
type ExpandResult struct {
	Solution   Solution
	FinalPool  []model.Roster
	Rounds     int
}

// Expand runs the gap-driven pool expansion loop: solve, and if
// coverage is incomplete, ask roster.GenerateTargeted for rosters aimed at
// the uncovered instances, merge them into the pool, and solve again. It
// stops at cfg.MaxRounds, at full coverage, or after maxConsecutiveStalls
// rounds that add nothing new to the pool. baseline fixes frozen-window
// variables and feeds cfg.ChurnWeight into every round's solve.
func Expand(ctx context.Context, initialPool []model.Roster, blocks []model.Block, instanceIDs []string, cfg config.Solver, baseline model.Baseline) ExpandResult {
	pool := append([]model.Roster(nil), initialPool...)
	known := map[string]bool{}
	for _, r := range pool {
		known[r.Fingerprint] = true
	}

	var last Solution
	stalls := 0
	round := 0

	for ; round < cfg.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			logging.Warningf(ctx, "rmp: round %d aborted by deadline (%s); returning best incumbent", round, err)
			if last.Objective == 0 && last.Selected == nil && last.Uncovered == nil {
				last = SolveSetPartition(pool, instanceIDs, baseline, cfg.ChurnWeight)
			}
			break
		}
		last = SolveSetPartition(pool, instanceIDs, baseline, cfg.ChurnWeight)
		if len(last.Uncovered) == 0 {
			logging.Infof(ctx, "rmp: full coverage reached after %d round(s)", round+1)
			break
		}

		proposed := roster.GenerateTargeted(ctx, last.Uncovered, blocks, cfg, round)
		added := 0
		for _, r := range proposed {
			if known[r.Fingerprint] {
				continue
			}
			known[r.Fingerprint] = true
			pool = append(pool, r)
			added++
		}

		if added == 0 {
			stalls++
			logging.Warningf(ctx, "rmp: round %d added no new rosters (stall %d/%d), %d instances still uncovered",
				round, stalls, maxConsecutiveStalls, len(last.Uncovered))
			if stalls >= maxConsecutiveStalls {
				break
			}
			continue
		}
		stalls = 0
		// Keep the merged pool in the (fte_class, -hours, fingerprint)
		// order SolveSetPartition breaks ties by.
		sort.SliceStable(pool, func(i, j int) bool {
			ci, cj := classRank(pool[i].FTEClass), classRank(pool[j].FTEClass)
			if ci != cj {
				return ci < cj
			}
			if pool[i].TotalWorkMinutes != pool[j].TotalWorkMinutes {
				return pool[i].TotalWorkMinutes > pool[j].TotalWorkMinutes
			}
			return pool[i].Fingerprint < pool[j].Fingerprint
		})
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Fingerprint < pool[j].Fingerprint })
	return ExpandResult{Solution: last, FinalPool: pool, Rounds: round + 1}
}
