// Package render implements the canonical JSON presentation of a solved
// plan and of a forecast diff: a plan's assignments and KPIs, and the
// ADDED/REMOVED/CHANGED delta between two forecasts. Every exported type
// declares its fields in the order they must serialize, so plain
// encoding/json already produces the canonical, reproducible form without
// a hand-rolled sorted-key encoder.
package render

import (
	"encoding/json"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

// PlanView is the canonical JSON rendering of one solved plan.
type PlanView struct {
	PlanVersionID    string           `json:"plan_version_id"`
	Status           string           `json:"status"`
	SolverConfigHash string           `json:"solver_config_hash"`
	OutputHash       string           `json:"output_hash"`
	KPIs             KPIView          `json:"kpis"`
	Assignments      []AssignmentView `json:"assignments"`
}

// KPIView mirrors model.KPIs field-for-field; it exists so render owns the
// serialized shape independently of the in-core struct's own layout.
type KPIView struct {
	Headcount      int     `json:"headcount"`
	FTECount       int     `json:"fte_count"`
	CorePTCount    int     `json:"core_pt_count"`
	FlexPTCount    int     `json:"flex_pt_count"`
	AvgFTEHours    float64 `json:"avg_fte_hours"`
	MaxWeeklyHours float64 `json:"max_weekly_hours"`
	CoveragePct    float64 `json:"coverage_pct"`
}

// AssignmentView is one driver/instance/block binding.
type AssignmentView struct {
	DriverLabel    string `json:"driver_label"`
	TourInstanceID string `json:"tour_instance_id"`
	BlockID        string `json:"block_id"`
}

// Plan renders a plan's canonical JSON view, assignments sorted by
// (driver_label, tour_instance_id) so the byte form is stable regardless
// of the order the caller accumulated them in.
func Plan(plan model.PlanVersion, assignments []model.Assignment, kpis model.KPIs) PlanView {
	views := make([]AssignmentView, len(assignments))
	for i, a := range assignments {
		views[i] = AssignmentView{DriverLabel: a.DriverLabel, TourInstanceID: a.TourInstanceID, BlockID: a.BlockID}
	}
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].DriverLabel != views[j].DriverLabel {
			return views[i].DriverLabel < views[j].DriverLabel
		}
		return views[i].TourInstanceID < views[j].TourInstanceID
	})
	return PlanView{
		PlanVersionID:    plan.ID,
		Status:           string(plan.Status),
		SolverConfigHash: plan.SolverConfigHash,
		OutputHash:       plan.OutputHash,
		KPIs: KPIView{
			Headcount:      kpis.Headcount,
			FTECount:       kpis.FTECount,
			CorePTCount:    kpis.CorePTCount,
			FlexPTCount:    kpis.FlexPTCount,
			AvgFTEHours:    kpis.AvgFTEHours,
			MaxWeeklyHours: kpis.MaxWeeklyHours,
			CoveragePct:    kpis.CoveragePct,
		},
		Assignments: views,
	}
}

// PlanJSON marshals Plan's view with sorted-looking, stable indentation
// for CLI and log output.
func PlanJSON(plan model.PlanVersion, assignments []model.Assignment, kpis model.KPIs) ([]byte, error) {
	return json.MarshalIndent(Plan(plan, assignments, kpis), "", "  ")
}

// DiffView is the canonical JSON rendering of a DiffResult.
type DiffView struct {
	ForecastAID string         `json:"forecast_a_id"`
	ForecastBID string         `json:"forecast_b_id"`
	Added       []DeltaView    `json:"added"`
	Removed     []DeltaView    `json:"removed"`
	Changed     []ChangedView  `json:"changed"`
}

type DeltaView struct {
	Fingerprint string `json:"fingerprint"`
	Count       int    `json:"count"`
}

type ChangedView struct {
	FromFingerprint string `json:"from_fingerprint"`
	ToFingerprint   string `json:"to_fingerprint"`
	Depot           string `json:"depot"`
	Skill           string `json:"skill"`
}

// Diff renders a DiffResult's canonical JSON view.
func Diff(d model.DiffResult) DiffView {
	added := make([]DeltaView, len(d.Added))
	for i, a := range d.Added {
		added[i] = DeltaView{Fingerprint: a.Fingerprint, Count: a.Count}
	}
	removed := make([]DeltaView, len(d.Removed))
	for i, r := range d.Removed {
		removed[i] = DeltaView{Fingerprint: r.Fingerprint, Count: r.Count}
	}
	changed := make([]ChangedView, len(d.Changed))
	for i, c := range d.Changed {
		changed[i] = ChangedView{
			FromFingerprint: c.From.Fingerprint,
			ToFingerprint:   c.To.Fingerprint,
			Depot:           c.To.Depot,
			Skill:           c.To.Skill,
		}
	}
	return DiffView{
		ForecastAID: d.ForecastAID,
		ForecastBID: d.ForecastBID,
		Added:       added,
		Removed:     removed,
		Changed:     changed,
	}
}

// DiffJSON marshals Diff's view.
func DiffJSON(d model.DiffResult) ([]byte, error) {
	return json.MarshalIndent(Diff(d), "", "  ")
}

// Summary is a one-line human-readable recap of a solved plan, the shape
// the CLI prints to stderr after a solve completes.
func Summary(plan model.PlanVersion, kpis model.KPIs) string {
	return humanize.Comma(int64(kpis.Headcount)) + " drivers (" +
		humanize.Comma(int64(kpis.FTECount)) + " FTE, " +
		humanize.Comma(int64(kpis.CorePTCount)) + " core PT, " +
		humanize.Comma(int64(kpis.FlexPTCount)) + " flex PT), plan " +
		string(plan.Status) + ", output_hash " + plan.OutputHash
}
