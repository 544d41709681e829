package model

import "time"

// CheckName is one of the seven fixed-order audits plus the
// harness-only reproducibility check (documented, not validator-run).
type CheckName string

const (
	CheckCoverage     CheckName = "COVERAGE"
	CheckOverlap      CheckName = "OVERLAP"
	CheckRest         CheckName = "REST"
	CheckSpanRegular  CheckName = "SPAN_REGULAR"
	CheckSpanSplit    CheckName = "SPAN_SPLIT"
	CheckFatigue      CheckName = "FATIGUE"
	CheckMaxWeekly    CheckName = "MAX_WEEKLY_HOURS"
	CheckReproducible CheckName = "REPRODUCIBILITY" // harness-only, footnote
)

// OrderedChecks is the fixed seven-check execution order the validator runs.
var OrderedChecks = []CheckName{
	CheckCoverage,
	CheckOverlap,
	CheckRest,
	CheckSpanRegular,
	CheckSpanSplit,
	CheckFatigue,
	CheckMaxWeekly,
}

// AuditStatus is PASS or FAIL for a single check.
type AuditStatus string

const (
	AuditPass AuditStatus = "PASS"
	AuditFail AuditStatus = "FAIL"
)

// AuditRecord is append-only, including for LOCKED plans.
type AuditRecord struct {
	PlanVersionID string
	CheckName     CheckName
	Status        AuditStatus
	// Counters explains *how* a check failed: e.g. COVERAGE's
	// counters is the count of uncovered instances, REST's is the count
	// of violating block pairs. Keys are check-specific, documented on
	// each checker in internal/validator.
	Counters map[string]int
	Details  string
	CreatedAt time.Time
}
