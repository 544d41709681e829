package rmp

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/DRNaser/shift-optimizer-sub005/internal/config"
	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
	"github.com/DRNaser/shift-optimizer-sub005/internal/roster"
)

func block(day model.Day, id string, startHour, spanHours int, bt model.BlockType) model.Block {
	base := time.Date(2026, 1, 5+int(day), 0, 0, 0, 0, time.UTC)
	start := base.Add(time.Duration(startHour) * time.Hour)
	end := start.Add(time.Duration(spanHours) * time.Hour)
	return model.Block{
		ID:                 id,
		Day:                day,
		OrderedInstanceIDs: []string{id + "-i1"},
		Type:               bt,
		FirstStart:         start,
		LastEnd:            end,
		SpanMinutes:        spanHours * 60,
	}
}

func TestExpandReachesFullCoverageFromSingletonsAlone(t *testing.T) {
	Convey("Given three isolated ONE blocks and an empty starting pool", t, func() {
		blocks := []model.Block{
			block(model.Monday, "mo1", 6, 8, model.BlockOne),
			block(model.Wednesday, "we1", 6, 8, model.BlockOne),
			block(model.Friday, "fr1", 6, 8, model.BlockOne),
		}
		cfg := config.Default()
		cfg.MaxRounds = 10
		var instanceIDs []string
		for _, b := range blocks {
			instanceIDs = append(instanceIDs, b.OrderedInstanceIDs...)
		}

		result := Expand(context.Background(), nil, blocks, instanceIDs, cfg, model.Baseline{})

		Convey("targeted expansion covers everything with one combined Mo+We+Fr roster", func() {
			So(result.Solution.Uncovered, ShouldBeEmpty)
			So(len(result.Solution.Selected), ShouldEqual, 1)
		})
	})
}

func TestExpandIsDeterministicAcrossRuns(t *testing.T) {
	Convey("Given the same blocks, seed and config", t, func() {
		blocks := []model.Block{
			block(model.Monday, "mo1", 6, 9, model.BlockOne),
			block(model.Tuesday, "tu1", 6, 9, model.BlockOne),
			block(model.Thursday, "th1", 6, 9, model.BlockOne),
		}
		cfg := config.Default()
		cfg.Seed = 7
		cfg.MaxRounds = 5
		var instanceIDs []string
		for _, b := range blocks {
			instanceIDs = append(instanceIDs, b.OrderedInstanceIDs...)
		}
		initial := roster.Generate(context.Background(), blocks, cfg, model.Baseline{})

		r1 := Expand(context.Background(), initial, blocks, instanceIDs, cfg, model.Baseline{})
		r2 := Expand(context.Background(), initial, blocks, instanceIDs, cfg, model.Baseline{})

		Convey("the two expansions agree on coverage and objective", func() {
			So(r1.Solution.Objective, ShouldEqual, r2.Solution.Objective)
			So(len(r1.Solution.Selected), ShouldEqual, len(r2.Solution.Selected))
		})
	})
}
