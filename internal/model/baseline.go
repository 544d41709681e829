package model

import (
	"sort"
	"time"
)

// Baseline captures a prior plan's assignments for a solve that must
// reconcile against it: which blocks fall inside the freeze window and
// therefore cannot change, and which driver previously held each
// instance, the reference point churn_weight scores reassignment
// against. A zero Baseline (Empty() true) means the solve has no prior
// plan, the first-ever solve for a forecast.
type Baseline struct {
	// FrozenBlocks maps a prior block_id to the sorted tour_instance_ids
	// it held, restricted to blocks holding at least one instance whose
	// start falls inside the freeze window.
	FrozenBlocks map[string][]string
	// DriverInstances maps a prior driver_label to the sorted
	// tour_instance_ids it held for the whole week.
	DriverInstances map[string][]string
	// InstanceDriver maps a prior tour_instance_id to the driver_label
	// that held it.
	InstanceDriver map[string]string
}

// NewBaseline groups priorAssignments by block and by driver, and marks
// every block holding an instance whose start falls within freezeWindow
// of now as frozen. priorAssignments are assumed to reference instance
// ids present in instances (re-solving the same forecast); an id absent
// from instances contributes to DriverInstances/InstanceDriver for churn
// scoring but never to FrozenBlocks, since its timing can't be checked.
func NewBaseline(priorAssignments []Assignment, instances []TourInstance, now time.Time, freezeWindow time.Duration) Baseline {
	startByID := make(map[string]time.Time, len(instances))
	for _, inst := range instances {
		startByID[inst.ID] = inst.StartDatetime
	}

	b := Baseline{
		FrozenBlocks:    map[string][]string{},
		DriverInstances: map[string][]string{},
		InstanceDriver:  map[string]string{},
	}
	blockInstances := map[string][]string{}
	frozenBlock := map[string]bool{}
	for _, a := range priorAssignments {
		b.InstanceDriver[a.TourInstanceID] = a.DriverLabel
		b.DriverInstances[a.DriverLabel] = append(b.DriverInstances[a.DriverLabel], a.TourInstanceID)
		blockInstances[a.BlockID] = append(blockInstances[a.BlockID], a.TourInstanceID)
		if st, ok := startByID[a.TourInstanceID]; ok && st.Sub(now) < freezeWindow {
			frozenBlock[a.BlockID] = true
		}
	}
	for driver := range b.DriverInstances {
		sort.Strings(b.DriverInstances[driver])
	}
	for blockID, ids := range blockInstances {
		if !frozenBlock[blockID] {
			continue
		}
		sort.Strings(ids)
		b.FrozenBlocks[blockID] = ids
	}
	return b
}

// Empty reports whether this Baseline carries no prior assignments.
func (b Baseline) Empty() bool {
	return len(b.InstanceDriver) == 0
}

// BlockConsistent reports whether a candidate block's instance set is
// compatible with every frozen block: it may share nothing with a frozen
// block, or it may match one exactly, but it may never partially overlap
// one. This is the RMP's variable-fixing rule for the freeze window —
// any roster built from a block that fails this check is infeasible and
// excluded from selection.
func (b Baseline) BlockConsistent(instanceIDs []string) bool {
	for _, frozenIDs := range b.FrozenBlocks {
		if !anyOverlap(instanceIDs, frozenIDs) {
			continue
		}
		if !SameInstanceSet(instanceIDs, frozenIDs) {
			return false
		}
	}
	return true
}

// ChurnCount returns how many of instanceIDs previously belonged to a
// driver whose full prior weekly instance set differs from instanceIDs —
// the per-instance "reassigned vs. baseline plan" count the churn_weight
// objective term penalizes.
func (b Baseline) ChurnCount(instanceIDs []string) int {
	if b.Empty() {
		return 0
	}
	count := 0
	for _, id := range instanceIDs {
		driver, ok := b.InstanceDriver[id]
		if !ok {
			continue
		}
		if !SameInstanceSet(b.DriverInstances[driver], instanceIDs) {
			count++
		}
	}
	return count
}

// SameInstanceSet reports whether a and b contain exactly the same
// tour_instance_ids, ignoring order and duplicates.
func SameInstanceSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if !set[id] {
			return false
		}
	}
	return true
}

func anyOverlap(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if set[id] {
			return true
		}
	}
	return false
}
