package rmp

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

func mkRoster(fp string, class model.FTEClass, minutes int, instances ...string) model.Roster {
	return model.Roster{
		Fingerprint:      fp,
		TourInstanceIDs:  instances,
		TotalWorkMinutes: minutes,
		FTEClass:         class,
	}
}

func TestSolveSetPartitionCoversEverythingWhenPossible(t *testing.T) {
	Convey("Given a pool with a full-coverage roster and a cheaper partial one", t, func() {
		pool := []model.Roster{
			mkRoster("full", model.FTE, 2400, "i1", "i2", "i3"),
			mkRoster("partial", model.FlexPT, 480, "i1"),
		}
		sol := SolveSetPartition(pool, []string{"i1", "i2", "i3"}, model.Baseline{}, 0)

		Convey("the full-coverage roster is selected and nothing is left uncovered", func() {
			So(sol.Uncovered, ShouldBeEmpty)
			So(len(sol.Selected), ShouldEqual, 1)
			So(sol.Selected[0].Fingerprint, ShouldEqual, "full")
		})
	})
}

func TestSolveSetPartitionReportsUncoveredWhenInfeasible(t *testing.T) {
	Convey("Given a pool that cannot cover every instance", t, func() {
		pool := []model.Roster{
			mkRoster("a", model.FTE, 2400, "i1"),
		}
		sol := SolveSetPartition(pool, []string{"i1", "i2"}, model.Baseline{}, 0)

		Convey("i2 is reported uncovered", func() {
			So(sol.Uncovered, ShouldResemble, []string{"i2"})
		})
	})
}

func TestSolveSetPartitionPicksOneCoveringRosterOverTwoSmaller(t *testing.T) {
	Convey("Given two rosters whose union is covered by a third alone", t, func() {
		pool := []model.Roster{
			mkRoster("big", model.FTE, 2400, "i1", "i2"),
			mkRoster("r1", model.FlexPT, 480, "i1"),
			mkRoster("r2", model.FlexPT, 480, "i2"),
		}
		sol := SolveSetPartition(pool, []string{"i1", "i2"}, model.Baseline{}, 0)

		Convey("only the single covering roster remains selected", func() {
			So(len(sol.Selected), ShouldEqual, 1)
			So(sol.Selected[0].Fingerprint, ShouldEqual, "big")
		})
	})
}

func TestSolveSetPartitionNeverSelectsOverlappingRosters(t *testing.T) {
	Convey("Given two partially overlapping rosters that together cover everything", t, func() {
		pool := []model.Roster{
			mkRoster("left", model.FlexPT, 480, "i1", "i2"),
			mkRoster("right", model.FlexPT, 480, "i2", "i3"),
		}
		sol := SolveSetPartition(pool, []string{"i1", "i2", "i3"}, model.Baseline{}, 0)

		Convey("only one of them is selected, and the instance it doesn't cover is left uncovered", func() {
			So(len(sol.Selected), ShouldEqual, 1)
			So(sol.Uncovered, ShouldNotBeEmpty)
		})
	})
}

func TestSolveSetPartitionExcludesRostersThatBreakAFrozenBlock(t *testing.T) {
	Convey("Given a baseline with i1 and i2 frozen together in one block", t, func() {
		baseline := model.Baseline{
			FrozenBlocks: map[string][]string{"blk-1": {"i1", "i2"}},
		}
		pool := []model.Roster{
			{
				Fingerprint:     "splits-the-block",
				FTEClass:        model.FlexPT,
				TourInstanceIDs: []string{"i1"},
				Blocks:          []model.Block{{ID: "blk-1", OrderedInstanceIDs: []string{"i1"}}},
			},
			{
				Fingerprint:     "keeps-the-block",
				FTEClass:        model.FlexPT,
				TourInstanceIDs: []string{"i1", "i2"},
				Blocks:          []model.Block{{ID: "blk-1", OrderedInstanceIDs: []string{"i1", "i2"}}},
			},
		}
		sol := SolveSetPartition(pool, []string{"i1", "i2"}, baseline, 0)

		Convey("only the roster preserving the frozen block's composition is eligible", func() {
			So(len(sol.Selected), ShouldEqual, 1)
			So(sol.Selected[0].Fingerprint, ShouldEqual, "keeps-the-block")
		})
	})
}

func TestSolveSetPartitionIsDeterministic(t *testing.T) {
	Convey("Given the same pool and instance set solved twice", t, func() {
		pool := []model.Roster{
			mkRoster("a", model.FTE, 2800, "i1", "i2"),
			mkRoster("b", model.CorePT, 900, "i3"),
			mkRoster("c", model.FlexPT, 400, "i2", "i3"),
		}
		ids := []string{"i1", "i2", "i3"}
		first := SolveSetPartition(pool, ids, model.Baseline{}, 0)
		second := SolveSetPartition(pool, ids, model.Baseline{}, 0)

		Convey("both solves agree on the selected fingerprints and objective", func() {
			So(len(first.Selected), ShouldEqual, len(second.Selected))
			for i := range first.Selected {
				So(first.Selected[i].Fingerprint, ShouldEqual, second.Selected[i].Fingerprint)
			}
			So(first.Objective, ShouldEqual, second.Objective)
		})
	})
}

func TestAssignDriversIsDeterministicAcrossRuns(t *testing.T) {
	Convey("Given a fixed selection of rosters with blocks", t, func() {
		selected := []model.Roster{
			{
				Fingerprint:      "r1",
				FTEClass:         model.FTE,
				TotalWorkMinutes: 2800,
				Blocks: []model.Block{
					{ID: "b1", OrderedInstanceIDs: []string{"i1"}},
				},
			},
			{
				Fingerprint:      "r2",
				FTEClass:         model.FlexPT,
				TotalWorkMinutes: 400,
				Blocks: []model.Block{
					{ID: "b2", OrderedInstanceIDs: []string{"i2"}},
				},
			},
		}
		a1 := AssignDrivers("plan-1", selected)
		a2 := AssignDrivers("plan-1", selected)

		Convey("driver labels and assignment ordering are identical across calls", func() {
			So(a1, ShouldResemble, a2)
			So(a1[0].DriverLabel, ShouldEqual, "DRV-0001") // FTE class ranks before FlexPT
		})
	})
}
