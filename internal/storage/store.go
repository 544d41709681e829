// Package storage defines the persistence substrate contract: the
// external collaborator the core depends on to durably record forecasts,
// plans, assignments and audit history, and to enforce lock immutability
// independently of the core's own in-memory guards.
package storage

import (
	"context"
	"time"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

// Store is the full contract. Implementations must make
// assignments_batch_insert single-transaction/all-or-nothing, make
// append_audit append-only even for LOCKED plans, and make
// enforce_locked_immutability reject any insert/update/delete against a
// LOCKED plan's assignments or tour instances — independent of whether
// the caller already checked version.CheckMutationAllowed, since the
// substrate is the last line of defense.
type Store interface {
	// CreateForecastVersion is idempotent by InputHash: a second call
	// with a forecast carrying an already-stored InputHash returns the
	// existing id rather than creating a duplicate.
	CreateForecastVersion(ctx context.Context, fv model.ForecastVersion) (string, error)

	// CreateTourInstances inserts all instances for a forecast atomically.
	CreateTourInstances(ctx context.Context, forecastID string, instances []model.TourInstance) error

	CreatePlanVersion(ctx context.Context, pv model.PlanVersion) (string, error)

	// AssignmentsBatchInsert is single-transaction, all-or-nothing: either
	// every row lands or none do.
	AssignmentsBatchInsert(ctx context.Context, planID string, rows []model.Assignment) error

	// UpdatePlanStatus enforces the version package's monotone transition
	// rules; callers must not bypass it with a raw write.
	UpdatePlanStatus(ctx context.Context, planID string, newStatus model.PlanStatus) error

	// UpdatePlanOutputHash records the output_hash once the solve
	// that produced it has finished; it does not touch plan status.
	UpdatePlanOutputHash(ctx context.Context, planID string, outputHash string) error

	// AppendAudit is append-only, including for LOCKED plans.
	AppendAudit(ctx context.Context, records []model.AuditRecord) error

	// StalePlanSweep flips abandoned SOLVING plans older than the cutoff
	// to FAILED. It is a background collaborator's entrypoint, not a
	// scheduled job this package runs itself.
	StalePlanSweep(ctx context.Context, olderThan time.Time) (int, error)

	// PlanByID and InstancesByForecast back reads the core needs during a
	// solve (e.g. loading a baseline for a freeze-window comparison).
	PlanByID(ctx context.Context, planID string) (model.PlanVersion, error)
	InstancesByForecast(ctx context.Context, forecastID string) ([]model.TourInstance, error)

	// AssignmentsByPlan returns a prior plan's assignment rows, ordered by
	// TourInstanceID, for the caller to build a freeze-window/churn
	// baseline from before starting a new solve.
	AssignmentsByPlan(ctx context.Context, planID string) ([]model.Assignment, error)
}
