package storage

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

func TestCreateForecastVersionIsIdempotentByInputHash(t *testing.T) {
	Convey("Given two creates with the same input_hash", t, func() {
		s := NewMemStore()
		ctx := context.Background()
		fv := model.ForecastVersion{ID: "fc-1", InputHash: "hash-a"}

		id1, err1 := s.CreateForecastVersion(ctx, fv)
		id2, err2 := s.CreateForecastVersion(ctx, model.ForecastVersion{ID: "fc-2", InputHash: "hash-a"})

		Convey("the second call returns the first call's id", func() {
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(id2, ShouldEqual, id1)
		})
	})
}

func TestAssignmentsBatchInsertRejectsLockedPlan(t *testing.T) {
	Convey("Given a LOCKED plan", t, func() {
		s := NewMemStore()
		ctx := context.Background()
		planID, _ := s.CreatePlanVersion(ctx, model.PlanVersion{ID: "plan-1", Status: model.PlanLockedSt})

		err := s.AssignmentsBatchInsert(ctx, planID, []model.Assignment{{TourInstanceID: "i1"}})

		Convey("the insert fails with ErrPlanLocked", func() {
			So(err, ShouldEqual, model.ErrPlanLocked)
		})
	})
}

func TestUpdatePlanStatusEnforcesMonotoneTransitions(t *testing.T) {
	Convey("Given a DRAFT plan", t, func() {
		s := NewMemStore()
		ctx := context.Background()
		planID, _ := s.CreatePlanVersion(ctx, model.PlanVersion{ID: "plan-1", Status: model.PlanDraft})

		Convey("DRAFT -> LOCKED directly is rejected", func() {
			err := s.UpdatePlanStatus(ctx, planID, model.PlanLockedSt)
			So(err, ShouldNotBeNil)
		})
		Convey("DRAFT -> AUDITED is accepted", func() {
			err := s.UpdatePlanStatus(ctx, planID, model.PlanAudited)
			So(err, ShouldBeNil)
			plan, _ := s.PlanByID(ctx, planID)
			So(plan.Status, ShouldEqual, model.PlanAudited)
		})
	})
}

func TestStalePlanSweepFlipsOldSolvingPlans(t *testing.T) {
	Convey("Given one old SOLVING plan and one fresh one", t, func() {
		s := NewMemStore()
		ctx := context.Background()
		cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		oldID, _ := s.CreatePlanVersion(ctx, model.PlanVersion{
			ID: "old", Status: model.PlanSolving, CreatedAt: cutoff.Add(-time.Hour),
		})
		freshID, _ := s.CreatePlanVersion(ctx, model.PlanVersion{
			ID: "fresh", Status: model.PlanSolving, CreatedAt: cutoff.Add(time.Hour),
		})

		n, err := s.StalePlanSweep(ctx, cutoff)

		Convey("only the old plan is swept to FAILED", func() {
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
			old, _ := s.PlanByID(ctx, oldID)
			fresh, _ := s.PlanByID(ctx, freshID)
			So(old.Status, ShouldEqual, model.PlanFailed)
			So(fresh.Status, ShouldEqual, model.PlanSolving)
		})
	})
}

func TestAssignmentsByPlanReturnsRowsSortedByInstance(t *testing.T) {
	Convey("Given a plan with assignments inserted out of instance order", t, func() {
		s := NewMemStore()
		ctx := context.Background()
		planID, _ := s.CreatePlanVersion(ctx, model.PlanVersion{ID: "plan-1", Status: model.PlanDraft})
		err := s.AssignmentsBatchInsert(ctx, planID, []model.Assignment{
			{TourInstanceID: "i2", DriverLabel: "DRV-0001", BlockID: "b2"},
			{TourInstanceID: "i1", DriverLabel: "DRV-0001", BlockID: "b1"},
		})
		So(err, ShouldBeNil)

		rows, err := s.AssignmentsByPlan(ctx, planID)

		Convey("the rows come back sorted by tour_instance_id", func() {
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 2)
			So(rows[0].TourInstanceID, ShouldEqual, "i1")
			So(rows[1].TourInstanceID, ShouldEqual, "i2")
		})
	})
}

func TestAssignmentsByPlanErrorsForUnknownPlan(t *testing.T) {
	Convey("Given no plan with that id", t, func() {
		s := NewMemStore()
		_, err := s.AssignmentsByPlan(context.Background(), "missing")
		So(err, ShouldNotBeNil)
	})
}

func TestAppendAuditSucceedsEvenForLockedPlan(t *testing.T) {
	Convey("Given an audit record for a LOCKED plan", t, func() {
		s := NewMemStore()
		ctx := context.Background()
		err := s.AppendAudit(ctx, []model.AuditRecord{{PlanVersionID: "locked-plan", CheckName: model.CheckCoverage, Status: model.AuditPass}})

		Convey("the append-only path never checks lock status", func() {
			So(err, ShouldBeNil)
		})
	})
}
