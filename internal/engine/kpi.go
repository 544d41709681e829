package engine

import (
	"gonum.org/v1/gonum/stat"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

// computeKPIs implements the canonical per-plan summary.
func computeKPIs(selected []model.Roster) model.KPIs {
	var k model.KPIs
	var fteHours []float64
	for _, r := range selected {
		k.Headcount++
		hours := r.Hours()
		if hours > k.MaxWeeklyHours {
			k.MaxWeeklyHours = hours
		}
		switch r.FTEClass {
		case model.FTE:
			k.FTECount++
			fteHours = append(fteHours, hours)
		case model.CorePT:
			k.CorePTCount++
		case model.FlexPT:
			k.FlexPTCount++
		}
	}
	if len(fteHours) > 0 {
		k.AvgFTEHours = stat.Mean(fteHours, nil)
	}
	k.CoveragePct = 100.0 // CoveragePct is only meaningful when computed by
	// the caller against the full instance universe; engine.Solve only
	// reaches this point after RMP reports zero uncovered instances.
	return k
}
