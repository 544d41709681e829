package version

import (
	"context"
	"errors"
	"testing"

	"go.chromium.org/luci/common/clock/testclock"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

func TestTransitionPlanAllowsTheDocumentedMonotoneChain(t *testing.T) {
	Convey("Given the SOLVING -> DRAFT -> AUDITED -> LOCKED -> SUPERSEDED chain", t, func() {
		So(TransitionPlan(model.PlanSolving, model.PlanDraft), ShouldBeNil)
		So(TransitionPlan(model.PlanDraft, model.PlanAudited), ShouldBeNil)
		So(TransitionPlan(model.PlanAudited, model.PlanLockedSt), ShouldBeNil)
		So(TransitionPlan(model.PlanLockedSt, model.PlanSuperseded), ShouldBeNil)
	})
}

func TestTransitionPlanRejectsSkippingAudit(t *testing.T) {
	Convey("Given an attempt to lock a DRAFT plan directly", t, func() {
		err := TransitionPlan(model.PlanDraft, model.PlanLockedSt)

		Convey("it is rejected as an invalid transition", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, model.ErrInvalidTransition), ShouldBeTrue)
		})
	})
}

func TestTransitionPlanRejectsMutatingLockedPlans(t *testing.T) {
	Convey("Given a LOCKED plan", t, func() {
		err := TransitionPlan(model.PlanLockedSt, model.PlanDraft)

		Convey("no backward transition is legal", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestCheckMutationAllowedBlocksLockedAndSuperseded(t *testing.T) {
	Convey("Given LOCKED and SUPERSEDED plan statuses", t, func() {
		So(CheckMutationAllowed(model.PlanLockedSt), ShouldEqual, model.ErrPlanLocked)
		So(CheckMutationAllowed(model.PlanSuperseded), ShouldEqual, model.ErrPlanLocked)
	})
	Convey("Given a DRAFT plan status", t, func() {
		So(CheckMutationAllowed(model.PlanDraft), ShouldBeNil)
	})
}

func TestLockSetsLockedAtAndStatus(t *testing.T) {
	Convey("Given an AUDITED plan", t, func() {
		ctx, _ := testclock.UseTime(context.Background(), testclock.TestTimeUTC)
		plan := &model.PlanVersion{ID: "plan-1", Status: model.PlanAudited}

		err := Lock(ctx, plan)

		Convey("it transitions to LOCKED with a LockedAt timestamp", func() {
			So(err, ShouldBeNil)
			So(plan.Status, ShouldEqual, model.PlanLockedSt)
			So(plan.LockedAt, ShouldNotBeNil)
		})
	})
}

func TestLockRejectsNonAuditedPlans(t *testing.T) {
	Convey("Given a DRAFT plan", t, func() {
		ctx, _ := testclock.UseTime(context.Background(), testclock.TestTimeUTC)
		plan := &model.PlanVersion{ID: "plan-1", Status: model.PlanDraft}

		err := Lock(ctx, plan)

		Convey("locking fails and the plan stays DRAFT", func() {
			So(err, ShouldNotBeNil)
			So(plan.Status, ShouldEqual, model.PlanDraft)
		})
	})
}

func TestTransitionForecastOnlyLeavesPending(t *testing.T) {
	Convey("Given a READY forecast", t, func() {
		err := TransitionForecast(model.ForecastReady, model.ForecastFailed)

		Convey("no further transition is legal once it has left PENDING", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
