package rmp

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

// AssignDrivers turns a solved set of rosters into Assignments, minting a
// deterministic synthetic driver_label per roster. Labels are assigned in
// (fte_class, -hours, fingerprint) order so the same solve always hands
// the same roster the same label.
func AssignDrivers(planVersionID string, selected []model.Roster) []model.Assignment {
	ordered := append([]model.Roster(nil), selected...)
	sort.SliceStable(ordered, func(i, j int) bool {
		ci, cj := classRank(ordered[i].FTEClass), classRank(ordered[j].FTEClass)
		if ci != cj {
			return ci < cj
		}
		if ordered[i].TotalWorkMinutes != ordered[j].TotalWorkMinutes {
			return ordered[i].TotalWorkMinutes > ordered[j].TotalWorkMinutes
		}
		return ordered[i].Fingerprint < ordered[j].Fingerprint
	})

	var out []model.Assignment
	for i, r := range ordered {
		label := fmt.Sprintf("DRV-%04d", i+1)
		for _, b := range r.Blocks {
			for _, instID := range b.OrderedInstanceIDs {
				out = append(out, model.Assignment{
					PlanVersionID:  planVersionID,
					TourInstanceID: instID,
					DriverLabel:    label,
					BlockID:        b.ID,
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TourInstanceID < out[j].TourInstanceID })
	return out
}

func classRank(c model.FTEClass) int {
	switch c {
	case model.FTE:
		return 0
	case model.CorePT:
		return 1
	default:
		return 2
	}
}

// ComputeOutputHash implements the "sort the selected rosters by
// (driver_label, first_block_start) and hash the canonicalized assignment
// list". The same (input_hash, seed, solver_config_hash) must always
// reach this function with the same assignments, so the hash is a pure
// function of its argument with no clock or RNG involvement.
func ComputeOutputHash(assignments []model.Assignment, firstBlockStart map[string]int64) string {
	rows := append([]model.Assignment(nil), assignments...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].DriverLabel != rows[j].DriverLabel {
			return rows[i].DriverLabel < rows[j].DriverLabel
		}
		return firstBlockStart[rows[i].DriverLabel] < firstBlockStart[rows[j].DriverLabel]
	})

	var sb strings.Builder
	for _, a := range rows {
		sb.WriteString(a.DriverLabel)
		sb.WriteByte('|')
		sb.WriteString(a.BlockID)
		sb.WriteByte('|')
		sb.WriteString(a.TourInstanceID)
		sb.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
