package roster

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/DRNaser/shift-optimizer-sub005/internal/config"
	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

func dayBlock(day model.Day, id string, startHour, spanHours int, bt model.BlockType) model.Block {
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

func TestGenerateProducesSingletonFallbackForEveryOneBlock(t *testing.T) {
	Convey("Given two ONE-type blocks on different days", t, func() {
		blocks := []model.Block{
			dayBlock(model.Monday, "mo1", 6, 8, model.BlockOne),
			dayBlock(model.Tuesday, "tu1", 6, 8, model.BlockOne),
		}
		pool := Generate(context.Background(), blocks, config.Default(), model.Baseline{})

		coversBlock := func(id string) bool {
			for _, r := range pool {
				if len(r.Blocks) == 1 && r.Blocks[0].ID == id {
					return true
				}
			}
			return false
		}
		Convey("both singleton rosters exist in the pool", func() {
			So(coversBlock("mo1"), ShouldBeTrue)
			So(coversBlock("tu1"), ShouldBeTrue)
		})
	})
}

func TestGenerateIsDeterministic(t *testing.T) {
	Convey("Given the same blocks and seed", t, func() {
		blocks := []model.Block{
			dayBlock(model.Monday, "mo1", 6, 8, model.BlockOne),
			dayBlock(model.Tuesday, "tu1", 6, 8, model.BlockOne),
			dayBlock(model.Wednesday, "we1", 6, 8, model.BlockOne),
		}
		cfg := config.Default()
		cfg.Seed = 94
		poolA := Generate(context.Background(), blocks, cfg, model.Baseline{})
		poolB := Generate(context.Background(), blocks, cfg, model.Baseline{})

		Convey("two independent generations produce identical fingerprints in the same order", func() {
			So(len(poolA), ShouldEqual, len(poolB))
			for i := range poolA {
				So(poolA[i].Fingerprint, ShouldEqual, poolB[i].Fingerprint)
			}
		})
	})
}

func TestGenerateSeedsPoolWithFrozenBlockRosters(t *testing.T) {
	Convey("Given a baseline freezing a block that still exists in the pool", t, func() {
		mo := dayBlock(model.Monday, "mo1", 6, 8, model.BlockOne)
		blocks := []model.Block{mo, dayBlock(model.Tuesday, "tu1", 6, 8, model.BlockOne)}
		baseline := model.Baseline{FrozenBlocks: map[string][]string{"mo1": {"mo1-i1"}}}

		pool := Generate(context.Background(), blocks, config.Default(), baseline)

		Convey("a single-block roster reproducing the frozen block is in the pool", func() {
			found := false
			for _, r := range pool {
				if len(r.Blocks) == 1 && r.Blocks[0].ID == "mo1" {
					found = true
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}

func TestBuildFrozenReturnsNothingForAnEmptyBaseline(t *testing.T) {
	Convey("Given no baseline", t, func() {
		blocks := []model.Block{dayBlock(model.Monday, "mo1", 6, 8, model.BlockOne)}
		So(BuildFrozen(blocks, model.Baseline{}), ShouldBeEmpty)
	})
}

func TestGenerateRespectsRestAndFatigue(t *testing.T) {
	Convey("Given a THREE_CHAIN block on Monday and one on Tuesday with only 8h rest", t, func() {
		mo := dayBlock(model.Monday, "mo1", 6, 10, model.BlockThreeChain)
		tu := dayBlock(model.Tuesday, "tu1", 0, 10, model.BlockThreeChain) // starts 00:00, 8h after Monday's 16:00 end
		blocks := []model.Block{mo, tu}
		cfg := config.Default()
		cfg.RosterPoolPerBand = 50
		pool := Generate(context.Background(), blocks, cfg, model.Baseline{})

		Convey("no generated roster chains both consecutive THREE_CHAIN days", func() {
			for _, r := range pool {
				hasMo, hasTu := false, false
				for _, b := range r.Blocks {
					if b.Day == model.Monday && b.Type == model.BlockThreeChain {
						hasMo = true
					}
					if b.Day == model.Tuesday && b.Type == model.BlockThreeChain {
						hasTu = true
					}
				}
				So(hasMo && hasTu, ShouldBeFalse)
			}
		})
	})
}
