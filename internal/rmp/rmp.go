// Package rmp implements the Restricted Master Problem: selecting a
// minimal-cost, full-coverage subset of the roster pool.
//
// No CP-SAT binding is available in this environment, so the set-partition
// solve below is a deterministic bounded heuristic (greedy maximum-coverage
// construction under a strict disjointness rule) rather than an exact
// integer-program solve. It preserves the intended priority order —
// coverage first, then fewer PT rosters, then fewer FTE rosters, then
// band deviation — through weighted-sum roster scoring, and it is a pure
// function of (pool, instance set, baseline): no unseeded randomness, no
// unsorted map iteration.
package rmp

import (
	"sort"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

// Weight ratios, kept far enough apart that strict dominance holds
// (WUnder is 100x PTBase, PTBase is 20x FTEBase, FTEBase is 500x DevW):
// coverage always wins over headcount, headcount always wins over band
// deviation.
const (
	WUnder  = 1e8
	PTBase  = 1e6
	FTEBase = 5e4
	DevW    = 1e2

	devTargetHours = 47.5
)

// Solution is the result of one set-partition solve.
type Solution struct {
	Selected  []model.Roster
	Uncovered []string // tour_instance_ids with u_t = 1, sorted
	Objective float64
}

// dev computes dev(r) = (hours(r) - 47.5)^2, clipped to the roster's own
// FTE band so a FLEX_PT roster's deviation from the FTE target never
// dominates the objective the way an actual out-of-band roster would.
func dev(r model.Roster) float64 {
	hours := r.Hours()
	lo, hi := 30.0, 53.0
	switch r.FTEClass {
	case model.FTE:
		lo, hi = 40.0, 53.0
	case model.CorePT:
		lo, hi = 13.5, 40.0
	case model.FlexPT:
		lo, hi = 0.0, 13.5
	}
	if hours < lo {
		hours = lo
	}
	if hours > hi {
		hours = hi
	}
	d := hours - devTargetHours
	return d * d
}

// rosterCost is the per-roster contribution to the objective if selected:
// headcount weight by class, band deviation, and churnWeight times the
// number of its instances reassigned away from baseline.
func rosterCost(r model.Roster, baseline model.Baseline, churnWeight float64) float64 {
	base := FTEBase
	if r.FTEClass != model.FTE {
		base = PTBase
	}
	churn := churnWeight * float64(baseline.ChurnCount(r.TourInstanceIDs))
	return base + DevW*dev(r) + churn
}

// frozenConsistent reports whether every block in r respects the
// baseline's freeze window: none of its blocks may partially overlap a
// frozen block's instance set. This is the RMP's fixing of variables
// inconsistent with a frozen assignment to 0.
func frozenConsistent(r model.Roster, baseline model.Baseline) bool {
	for _, b := range r.Blocks {
		if !baseline.BlockConsistent(b.OrderedInstanceIDs) {
			return false
		}
	}
	return true
}

// SolveSetPartition selects a subset of pool covering as much of
// instanceIDs as possible at minimal weighted cost, enforcing the
// set-partition constraint Σ_{r: t∈r} x_r + u_t = 1: once an instance is
// claimed by a selected roster, no other roster may also claim it, so
// the selection is pairwise disjoint rather than merely a cover. baseline
// additionally fixes to 0 any roster whose blocks would break a frozen
// assignment, and feeds the churn_weight objective term.
//
// The pool is assumed to already carry the canonical (fte_class, -hours,
// roster_fingerprint) presentation order (roster.Generate /
// roster.GenerateTargeted both return pools sorted that way); ties in the
// greedy step are broken by that order, which is itself total, so the
// result is deterministic.
func SolveSetPartition(pool []model.Roster, instanceIDs []string, baseline model.Baseline, churnWeight float64) Solution {
	need := map[string]bool{}
	for _, id := range instanceIDs {
		need[id] = true
	}
	claimed := map[string]bool{}

	var selected []model.Roster
	remaining := make([]model.Roster, 0, len(pool))
	for _, r := range pool {
		if frozenConsistent(r, baseline) {
			remaining = append(remaining, r)
		}
	}

	for {
		bestIdx := -1
		bestGain := 0
		bestRatio := 0.0
		for i, r := range remaining {
			if overlapsClaimed(r, claimed) {
				continue
			}
			gain := 0
			for _, id := range r.TourInstanceIDs {
				if need[id] {
					gain++
				}
			}
			if gain == 0 {
				continue
			}
			ratio := rosterCost(r, baseline, churnWeight) / float64(gain)
			if bestIdx == -1 || gain > bestGain || (gain == bestGain && ratio < bestRatio) {
				bestIdx = i
				bestGain = gain
				bestRatio = ratio
			}
		}
		if bestIdx == -1 {
			break // no remaining roster can cover anything new without conflict: stall
		}
		chosen := remaining[bestIdx]
		selected = append(selected, chosen)
		for _, id := range chosen.TourInstanceIDs {
			claimed[id] = true
		}
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)

		if allClaimed(need, claimed) {
			break
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Fingerprint < selected[j].Fingerprint
	})

	var uncovered []string
	for id := range need {
		if !claimed[id] {
			uncovered = append(uncovered, id)
		}
	}
	sort.Strings(uncovered)

	return Solution{
		Selected:  selected,
		Uncovered: uncovered,
		Objective: objectiveValue(selected, uncovered, baseline, churnWeight),
	}
}

// overlapsClaimed reports whether r shares any instance with claimed; a
// roster is atomic, so even one shared instance makes the whole roster
// ineligible for selection alongside whatever already claimed it.
func overlapsClaimed(r model.Roster, claimed map[string]bool) bool {
	for _, id := range r.TourInstanceIDs {
		if claimed[id] {
			return true
		}
	}
	return false
}

func allClaimed(need, claimed map[string]bool) bool {
	for id := range need {
		if !claimed[id] {
			return false
		}
	}
	return true
}

func objectiveValue(selected []model.Roster, uncovered []string, baseline model.Baseline, churnWeight float64) float64 {
	total := WUnder * float64(len(uncovered))
	for _, r := range selected {
		total += rosterCost(r, baseline, churnWeight)
	}
	return total
}
