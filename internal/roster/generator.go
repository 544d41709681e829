// Package roster implements enumerating weekly rosters (sequences
// of at most one block per day) that locally satisfy rest, fatigue and
// weekly-hours constraints, seeding the pool the RMP selects from.
package roster

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"sort"
	"strings"
	"time"

	"go.chromium.org/luci/common/logging"

	"github.com/DRNaser/shift-optimizer-sub005/internal/config"
	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

// Generate builds the initial roster pool P: band-targeted heuristic
// rosters plus a singleton fallback for every single-instance block, so
// the RMP always has a feasible (if expensive) full-coverage solution
// before any gap-driven expansion runs.
//
// Generate is a deterministic function of (blocks, cfg.Seed,
// cfg.RosterPoolPerBand): no randomness escapes the seeded PRNG, and
// every slice it walks is pre-sorted, satisfying the determinism
// requirement.
func Generate(ctx context.Context, blocks []model.Block, cfg config.Solver, baseline model.Baseline) []model.Roster {
	byDay := groupByDay(blocks)
	rng := rand.New(rand.NewSource(cfg.Seed))

	seen := map[string]bool{}
	var pool []model.Roster

	for _, r := range BuildFrozen(blocks, baseline) {
		if seen[r.Fingerprint] {
			continue
		}
		seen[r.Fingerprint] = true
		pool = append(pool, r)
	}

	for _, b := range bands(cfg.RosterPoolPerBand) {
		for iter := 0; iter < b.rosterPerBand; iter++ {
			startIdx := iter % 7
			r, ok := tryBuildRoster(byDay, startIdx, b, cfg, rng)
			if !ok || seen[r.Fingerprint] {
				continue
			}
			seen[r.Fingerprint] = true
			pool = append(pool, r)
		}
	}

	for _, b := range blocks {
		if len(b.OrderedInstanceIDs) != 1 {
			continue
		}
		r := singletonRoster(b)
		if seen[r.Fingerprint] {
			continue
		}
		seen[r.Fingerprint] = true
		pool = append(pool, r)
	}

	sortRosters(pool)
	logging.Debugf(ctx, "roster: generated pool of %d candidate rosters from %d blocks", len(pool), len(blocks))
	return pool
}

func groupByDay(blocks []model.Block) map[model.Day][]model.Block {
	out := map[model.Day][]model.Block{}
	for _, b := range blocks {
		out[b.Day] = append(out[b.Day], b)
	}
	for day := range out {
		list := out[day]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].WorkMinutes() != list[j].WorkMinutes() {
				return list[i].WorkMinutes() > list[j].WorkMinutes() // biggest first: fills hours faster
			}
			return list[i].ID < list[j].ID
		})
		out[day] = list
	}
	return out
}

const restMinimum = 11 * time.Hour

func tryBuildRoster(byDay map[model.Day][]model.Block, startIdx int, b band, cfg config.Solver, rng *rand.Rand) (model.Roster, bool) {
	days := model.AllDays()
	var chosen []model.Block
	var prev *model.Block
	totalMinutes := 0

	for step := 0; step < 7; step++ {
		day := days[(startIdx+step)%7]
		candidates := byDay[day]
		if len(candidates) == 0 {
			continue
		}

		var feasible []model.Block
		for _, c := range candidates {
			if prev != nil {
				rest := c.FirstStart.Sub(prev.LastEnd)
				if rest < restMinimum {
					continue
				}
				if prev.Day.Next() == c.Day && prev.Type == model.BlockThreeChain && c.Type == model.BlockThreeChain {
					continue
				}
			}
			if totalMinutes+c.WorkMinutes() > cfg.WeeklyHoursCapMin {
				continue
			}
			feasible = append(feasible, c)
		}
		if len(feasible) == 0 {
			continue
		}

		topN := len(feasible)
		if topN > 3 {
			topN = 3
		}
		pick := feasible[0]
		if topN > 1 {
			pick = feasible[rng.Intn(topN)]
		}

		chosen = append(chosen, pick)
		totalMinutes += pick.WorkMinutes()
		prevCopy := pick
		prev = &prevCopy

		if float64(totalMinutes)/60.0 >= b.maxHours {
			break
		}
	}

	if len(chosen) == 0 {
		return model.Roster{}, false
	}
	return buildRoster(chosen), true
}

func singletonRoster(b model.Block) model.Roster {
	return buildRoster([]model.Block{b})
}

// BuildFrozen returns one single-block roster per baseline frozen block
// that still exists in the current block pool (matched by exact
// instance-set equality), guaranteeing the RMP always has an eligible
// candidate that reproduces a freeze-window assignment exactly.
func BuildFrozen(blocks []model.Block, baseline model.Baseline) []model.Roster {
	if baseline.Empty() {
		return nil
	}
	var out []model.Roster
	for _, frozenIDs := range baseline.FrozenBlocks {
		for _, b := range blocks {
			if model.SameInstanceSet(b.OrderedInstanceIDs, frozenIDs) {
				out = append(out, buildRoster([]model.Block{b}))
				break
			}
		}
	}
	sortRosters(out)
	return out
}

func buildRoster(blocks []model.Block) model.Roster {
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].FirstStart.Before(blocks[j].FirstStart)
	})
	var instanceIDs []string
	totalMinutes := 0
	for _, b := range blocks {
		instanceIDs = append(instanceIDs, b.OrderedInstanceIDs...)
		totalMinutes += b.WorkMinutes()
	}
	sort.Strings(instanceIDs)

	return model.Roster{
		Fingerprint:      fingerprint(blocks),
		Blocks:           blocks,
		TourInstanceIDs:  instanceIDs,
		TotalWorkMinutes: totalMinutes,
		FTEClass:         model.ClassifyFTE(totalMinutes),
	}
}

// fingerprint identifies a roster by its ordered block IDs, used for pool
// deduplication and as the final tie-break key in the RMP.
func fingerprint(blocks []model.Block) string {
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	sum := sha256.Sum256([]byte(strings.Join(ids, "|")))
	return hex.EncodeToString(sum[:])
}

// sortRosters applies the CP-SAT presentation order:
// (fte_class, -hours, roster_fingerprint).
func sortRosters(pool []model.Roster) {
	classRank := map[model.FTEClass]int{model.FTE: 0, model.CorePT: 1, model.FlexPT: 2}
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if classRank[a.FTEClass] != classRank[b.FTEClass] {
			return classRank[a.FTEClass] < classRank[b.FTEClass]
		}
		if a.TotalWorkMinutes != b.TotalWorkMinutes {
			return a.TotalWorkMinutes > b.TotalWorkMinutes
		}
		return a.Fingerprint < b.Fingerprint
	})
}
