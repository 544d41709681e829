package version

import (
	"context"
	"time"

	"go.chromium.org/luci/common/clock"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

// CheckMutationAllowed is the lock gate: any attempt to write an
// Assignment or TourInstance belonging to a LOCKED or SUPERSEDED plan
// must fail before the write reaches the persistence substrate.
// AuditRecord inserts are append-only and are never checked here.
func CheckMutationAllowed(status model.PlanStatus) error {
	if status == model.PlanLockedSt || status == model.PlanSuperseded {
		return model.ErrPlanLocked
	}
	return nil
}

// Lock performs the explicit AUDITED -> LOCKED transition.
func Lock(ctx context.Context, plan *model.PlanVersion) error {
	if err := TransitionPlan(plan.Status, model.PlanLockedSt); err != nil {
		return err
	}
	now := clock.Now(ctx)
	plan.Status = model.PlanLockedSt
	plan.LockedAt = &now
	logging.Infof(ctx, "version: plan %s locked at %s", plan.ID, now.Format(time.RFC3339))
	return nil
}

// Supersede marks a previously LOCKED plan SUPERSEDED. This
// requires an explicit external acknowledgement that a newer plan exists
// for the same scope; the core never calls this on its own initiative.
func Supersede(ctx context.Context, plan *model.PlanVersion) error {
	if err := TransitionPlan(plan.Status, model.PlanSuperseded); err != nil {
		return err
	}
	plan.Status = model.PlanSuperseded
	logging.Infof(ctx, "version: plan %s acknowledged superseded", plan.ID)
	return nil
}

// MarkFailed records a terminal FAILED transition from SOLVING, DRAFT or
// AUDITED, annotating why (a repair exhaustion, a solver timeout, ...).
func MarkFailed(ctx context.Context, plan *model.PlanVersion, reason error) error {
	if err := TransitionPlan(plan.Status, model.PlanFailed); err != nil {
		return err
	}
	plan.Status = model.PlanFailed
	logging.Errorf(ctx, "version: plan %s failed: %s", plan.ID, errors.Annotate(reason, "plan failure").Err())
	return nil
}
