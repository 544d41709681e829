package engine

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.chromium.org/luci/common/clock/testclock"

	"github.com/DRNaser/shift-optimizer-sub005/internal/config"
	"github.com/DRNaser/shift-optimizer-sub005/internal/idgen"
	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
	"github.com/DRNaser/shift-optimizer-sub005/internal/storage"
)

var nextTestID = idgen.Sequential("TI")

func testInstance(day model.Day, startHour, durHours int) model.TourInstance {
	base := time.Date(2026, 1, 5+int(day), 0, 0, 0, 0, time.UTC)
	start := base.Add(time.Duration(startHour) * time.Hour)
	return model.TourInstance{
		ID:            nextTestID(),
		Day:           day,
		StartDatetime: start,
		EndDatetime:   start.Add(time.Duration(durHours) * time.Hour),
		Fingerprint:   "fp",
	}
}

func TestSolveKeepsAFrozenPairTogetherAcrossAReSolve(t *testing.T) {
	Convey("Given a prior plan pairing two instances into one block, both starting inside the freeze window", t, func() {
		a := testInstance(model.Monday, 6, 4)
		b := model.TourInstance{
			ID:            nextTestID(),
			Day:           model.Monday,
			StartDatetime: a.EndDatetime.Add(45 * time.Minute),
			EndDatetime:   a.EndDatetime.Add(45*time.Minute + 4*time.Hour),
			Fingerprint:   "fp",
		}
		instances := []model.TourInstance{a, b}

		store := storage.NewMemStore()
		cfg := config.Default()
		cfg.MaxRounds = 10
		cfg.TotalBudgetSeconds = 60
		cfg.FreezeWindowMinutes = 7 * 24 * 60 // the whole week is within the window

		fv := model.ForecastVersion{ID: "fc-2", InputHash: "hash-2", Status: model.ForecastReady}
		ctx, _ := testclock.UseTime(context.Background(), a.StartDatetime.Add(-time.Hour))
		store.CreateForecastVersion(ctx, fv)

		e := New(store, cfg)
		first, err := e.Solve(ctx, fv, instances, nil)
		So(err, ShouldBeNil)

		second, err := e.Solve(ctx, fv, instances, first.Assignments)

		Convey("the re-solve still assigns both instances to a single driver", func() {
			So(err, ShouldBeNil)
			byDriver := map[string][]string{}
			for _, asn := range second.Assignments {
				byDriver[asn.DriverLabel] = append(byDriver[asn.DriverLabel], asn.TourInstanceID)
			}
			found := false
			for _, ids := range byDriver {
				if model.SameInstanceSet(ids, []string{a.ID, b.ID}) {
					found = true
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}

func TestSolveReachesAuditedForALegalSmallWeek(t *testing.T) {
	Convey("Given two well-separated single-instance days", t, func() {
		instances := []model.TourInstance{
			testInstance(model.Monday, 6, 8),
			testInstance(model.Wednesday, 6, 8),
		}
		store := storage.NewMemStore()
		cfg := config.Default()
		cfg.MaxRounds = 10
		cfg.TotalBudgetSeconds = 60
		e := New(store, cfg)

		fv := model.ForecastVersion{ID: "fc-1", InputHash: "hash-1", Status: model.ForecastReady}
		store.CreateForecastVersion(context.Background(), fv)

		result, err := e.Solve(context.Background(), fv, instances, nil)

		Convey("the plan reaches AUDITED with full coverage", func() {
			So(err, ShouldBeNil)
			So(result.Plan.Status, ShouldEqual, model.PlanAudited)
			So(len(result.Assignments), ShouldEqual, 2)
			So(result.KPIs.Headcount, ShouldBeGreaterThan, 0)
		})
	})
}
