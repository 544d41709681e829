package model

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewBaselineMarksOnlyNearTermBlocksFrozen(t *testing.T) {
	Convey("Given a prior plan with one block starting soon and one starting next week", t, func() {
		now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
		instances := []TourInstance{
			{ID: "i1", StartDatetime: now.Add(2 * time.Hour)},
			{ID: "i2", StartDatetime: now.Add(2 * time.Hour)},
			{ID: "i3", StartDatetime: now.Add(96 * time.Hour)},
		}
		prior := []Assignment{
			{TourInstanceID: "i1", DriverLabel: "DRV-0001", BlockID: "blk-near"},
			{TourInstanceID: "i2", DriverLabel: "DRV-0001", BlockID: "blk-near"},
			{TourInstanceID: "i3", DriverLabel: "DRV-0002", BlockID: "blk-far"},
		}

		baseline := NewBaseline(prior, instances, now, 12*time.Hour)

		Convey("only the near-term block is frozen", func() {
			So(baseline.FrozenBlocks, ShouldContainKey, "blk-near")
			So(baseline.FrozenBlocks["blk-near"], ShouldResemble, []string{"i1", "i2"})
			So(baseline.FrozenBlocks, ShouldNotContainKey, "blk-far")
		})
	})
}

func TestBaselineBlockConsistentRejectsPartialOverlap(t *testing.T) {
	Convey("Given a baseline with i1 and i2 frozen together", t, func() {
		baseline := Baseline{FrozenBlocks: map[string][]string{"blk-1": {"i1", "i2"}}}

		Convey("a block matching the frozen set exactly is consistent", func() {
			So(baseline.BlockConsistent([]string{"i1", "i2"}), ShouldBeTrue)
		})
		Convey("a block sharing nothing with it is consistent", func() {
			So(baseline.BlockConsistent([]string{"i3"}), ShouldBeTrue)
		})
		Convey("a block splitting the frozen pair apart is not consistent", func() {
			So(baseline.BlockConsistent([]string{"i1"}), ShouldBeFalse)
			So(baseline.BlockConsistent([]string{"i1", "i3"}), ShouldBeFalse)
		})
	})
}

func TestBaselineChurnCountCountsReassignedInstancesOnly(t *testing.T) {
	Convey("Given a baseline driver who held i1 and i2 together", t, func() {
		baseline := Baseline{
			InstanceDriver:  map[string]string{"i1": "DRV-0001", "i2": "DRV-0001"},
			DriverInstances: map[string][]string{"DRV-0001": {"i1", "i2"}},
		}

		Convey("a roster reproducing the same pair exactly has zero churn", func() {
			So(baseline.ChurnCount([]string{"i1", "i2"}), ShouldEqual, 0)
		})
		Convey("a roster splitting the driver's prior set counts every instance it touches as churn", func() {
			So(baseline.ChurnCount([]string{"i1"}), ShouldEqual, 1)
		})
		Convey("an instance absent from the baseline contributes no churn", func() {
			So(baseline.ChurnCount([]string{"i3"}), ShouldEqual, 0)
		})
	})
}

func TestEmptyBaselineHasNoFreezeOrChurn(t *testing.T) {
	Convey("Given a zero-value Baseline", t, func() {
		var baseline Baseline

		Convey("it reports Empty and never fixes or penalizes anything", func() {
			So(baseline.Empty(), ShouldBeTrue)
			So(baseline.BlockConsistent([]string{"i1"}), ShouldBeTrue)
			So(baseline.ChurnCount([]string{"i1"}), ShouldEqual, 0)
		})
	})
}
