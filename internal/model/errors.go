package model

import "go.chromium.org/luci/common/errors"

// Sentinel errors callers match with errors.Is; wrapping code should use
// errors.Annotate(err, ...).Err() so the sentinel survives unwrapping.
var (
	// ErrPlanLocked is returned whenever an Assignment or TourInstance
	// mutation is attempted against a LOCKED plan. Surfaced immediately,
	// never retried.
	ErrPlanLocked = errors.New("plan is locked: assignments and tour instances are immutable")

	// ErrRepairExhausted is returned when the repair budget is spent
	// without reaching an all-PASS audit state.
	ErrRepairExhausted = errors.New("repair budget exhausted without reaching a passing audit state")

	// ErrSolverInfeasible is returned when the RMP's gap-driven expansion
	// loop exits without achieving full coverage.
	ErrSolverInfeasible = errors.New("no feasible full-coverage assignment found")

	// ErrDeterminismViolation is returned by the test harness (not the
	// core) when two solves of identical inputs disagree on output_hash.
	ErrDeterminismViolation = errors.New("same inputs produced different output_hash")

	// ErrInvalidTransition is returned when a PlanStatus or ForecastStatus
	// transition violates the monotone lifecycle.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
)
