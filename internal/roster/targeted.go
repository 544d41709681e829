package roster

import (
	"context"
	"math/rand"
	"sort"

	"go.chromium.org/luci/common/logging"

	"github.com/DRNaser/shift-optimizer-sub005/internal/config"
	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

// GenerateTargeted is a bounded heuristic (not exhaustive, not LP-dual
// pricing) that, for each currently uncovered tour instance, proposes
// candidate rosters containing a block that covers it. round seeds a
// distinct but reproducible PRNG stream per expansion round so repeated
// rounds explore different combinations instead of regenerating the same
// rosters forever.
func GenerateTargeted(ctx context.Context, uncovered []string, blocks []model.Block, cfg config.Solver, round int) []model.Roster {
	byInstance := map[string][]model.Block{}
	for _, b := range blocks {
		for _, id := range b.OrderedInstanceIDs {
			byInstance[id] = append(byInstance[id], b)
		}
	}
	for id := range byInstance {
		list := byInstance[id]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].WorkMinutes() != list[j].WorkMinutes() {
				return list[i].WorkMinutes() > list[j].WorkMinutes()
			}
			return list[i].ID < list[j].ID
		})
		byInstance[id] = list
	}

	byDay := groupByDay(blocks)
	rng := rand.New(rand.NewSource(cfg.Seed + int64(round)*104729))

	sortedUncovered := append([]string(nil), uncovered...)
	sort.Strings(sortedUncovered)

	seen := map[string]bool{}
	var out []model.Roster

	for _, instanceID := range sortedUncovered {
		candidates := byInstance[instanceID]
		if len(candidates) > cfg.MaxCandidatesPerDuty {
			candidates = candidates[:cfg.MaxCandidatesPerDuty]
		}
		for _, forced := range candidates {
			single := singletonRoster(forced)
			if !seen[single.Fingerprint] {
				seen[single.Fingerprint] = true
				out = append(out, single)
			}

			extended, ok := extendFromForcedBlock(byDay, forced, cfg, rng)
			if ok && !seen[extended.Fingerprint] {
				seen[extended.Fingerprint] = true
				out = append(out, extended)
			}
		}
	}

	sortRosters(out)
	logging.Debugf(ctx, "roster: targeted expansion round %d proposed %d rosters for %d uncovered instances", round, len(out), len(uncovered))
	return out
}

// extendFromForcedBlock builds a roster that is guaranteed to contain
// forced, then greedily fills the remaining days the same way
// tryBuildRoster does, biased toward the "peak" band since a targeted
// roster exists to close a coverage gap, not to hit a specific band.
func extendFromForcedBlock(byDay map[model.Day][]model.Block, forced model.Block, cfg config.Solver, rng *rand.Rand) (model.Roster, bool) {
	days := model.AllDays()
	startIdx := int(forced.Day)
	target := bands(1)[0] // peak band: fill as much as legally possible

	chosen := []model.Block{forced}
	prev := forced
	totalMinutes := forced.WorkMinutes()

	for step := 1; step < 7; step++ {
		day := days[(startIdx+step)%7]
		candidates := byDay[day]
		var feasible []model.Block
		for _, c := range candidates {
			rest := c.FirstStart.Sub(prev.LastEnd)
			if rest < restMinimum {
				continue
			}
			if prev.Day.Next() == c.Day && prev.Type == model.BlockThreeChain && c.Type == model.BlockThreeChain {
				continue
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
		prev = pick
		if float64(totalMinutes)/60.0 >= target.maxHours {
			break
		}
	}

	if len(chosen) <= 1 {
		return model.Roster{}, false
	}
	return buildRoster(chosen), true
}
