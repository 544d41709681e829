// Package validator implements the seven fixed-order audits and the
// bounded swap/bump repair that follows a FAIL.
package validator

import (
	"sort"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

// Input is everything a validation pass needs: the full instance universe
// (for coverage), the candidate assignments, and the blocks they
// reference (for the block-level rest, span and fatigue checks).
type Input struct {
	Instances   []model.TourInstance
	Assignments []model.Assignment
	Blocks      map[string]model.Block // by BlockID
}

func (in Input) instanceByID() map[string]model.TourInstance {
	out := make(map[string]model.TourInstance, len(in.Instances))
	for _, inst := range in.Instances {
		out[inst.ID] = inst
	}
	return out
}

// driverBlocks groups the distinct blocks assigned to each driver, sorted
// by FirstStart, the ordering every block-level check assumes.
func (in Input) driverBlocks() map[string][]model.Block {
	seen := map[string]map[string]bool{}
	out := map[string][]model.Block{}
	for _, a := range in.Assignments {
		b, ok := in.Blocks[a.BlockID]
		if !ok {
			continue
		}
		if seen[a.DriverLabel] == nil {
			seen[a.DriverLabel] = map[string]bool{}
		}
		if seen[a.DriverLabel][a.BlockID] {
			continue
		}
		seen[a.DriverLabel][a.BlockID] = true
		out[a.DriverLabel] = append(out[a.DriverLabel], b)
	}
	for driver := range out {
		list := out[driver]
		sort.SliceStable(list, func(i, j int) bool { return list[i].FirstStart.Before(list[j].FirstStart) })
		out[driver] = list
	}
	return out
}

func (in Input) driverLabelsSorted() []string {
	seen := map[string]bool{}
	var labels []string
	for _, a := range in.Assignments {
		if !seen[a.DriverLabel] {
			seen[a.DriverLabel] = true
			labels = append(labels, a.DriverLabel)
		}
	}
	sort.Strings(labels)
	return labels
}
