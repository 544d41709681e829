package model

import "time"

// PlanStatus is the lifecycle state of a PlanVersion.
// Transitions are monotone: SOLVING -> DRAFT -> AUDITED -> LOCKED, with
// SOLVING/DRAFT/AUDITED able to fall to FAILED, and LOCKED able to fall to
// SUPERSEDED only on external acknowledgement of a newer plan.
type PlanStatus string

const (
	PlanSolving    PlanStatus = "SOLVING"
	PlanDraft      PlanStatus = "DRAFT"
	PlanAudited    PlanStatus = "AUDITED"
	PlanLockedSt   PlanStatus = "LOCKED"
	PlanFailed     PlanStatus = "FAILED"
	PlanSuperseded PlanStatus = "SUPERSEDED"
)

// PlanVersion is the solver's output envelope for one forecast scope.
type PlanVersion struct {
	ID                string
	ForecastVersionID string
	Seed              int64
	SolverConfigHash  string
	Status            PlanStatus
	OutputHash        string
	CreatedAt         time.Time
	LockedAt          *time.Time
}

// Assignment binds exactly one TourInstance to exactly one driver/block
// within a plan.
type Assignment struct {
	PlanVersionID  string
	TourInstanceID string
	DriverLabel    string
	BlockID        string
}

// KPIs is the canonical per-plan summary.
type KPIs struct {
	Headcount      int
	FTECount       int
	CorePTCount    int
	FlexPTCount    int
	AvgFTEHours    float64
	MaxWeeklyHours float64
	CoveragePct    float64
}
