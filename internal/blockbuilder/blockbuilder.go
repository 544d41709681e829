// Package blockbuilder implements enumerating the legal same-day,
// same-driver blocks (1-3 tour instances) that the RosterGenerator and
// RMP later combine into weekly rosters.
package blockbuilder

import (
	"context"
	"sort"
	"time"

	"go.chromium.org/luci/common/logging"
	"golang.org/x/sync/errgroup"

	"github.com/DRNaser/shift-optimizer-sub005/internal/config"
	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

const (
	twoRegSpanLimit     = 14 * time.Hour
	twoSplitSpanLimit   = 16 * time.Hour
	threeChainSpanLimit = 16 * time.Hour
)

// IDFunc mints a Block ID; see idgen.Sequential and expander.IDFunc for
// the same determinism rationale.
type IDFunc func() string

// Build enumerates all legal blocks over a week's worth of already
// time-ordered instances, grouped per calendar day with the preceding
// day's cross-midnight instances folded in. Each day's pool yields its
// three-instance blocks first, then its two-instance blocks, then its
// singles, each group in first-instance start order, so multi-instance
// blocks are prioritized over singles; the days follow in calendar order,
// and each pool is capped at cfg.MaxBlocksPerDay blocks. A block's Day is
// its first instance's Day, which for a carried cross-midnight instance
// is the day before the pool's.
//
// Per-day enumeration touches no shared solver state and is read-only, so
// it fans out across days with errgroup; ID minting is not safe to run
// concurrently (newID's counter is not synchronized), so it happens in a
// second, strictly sequential pass over the days in calendar order once
// every day's specs are known.
func Build(ctx context.Context, instances []model.TourInstance, cfg config.Solver, newID IDFunc) []model.Block {
	byDay := groupByDayWithCarry(instances)
	days := model.AllDays()
	specsByDay := make([][]blockSpec, len(days))

	g, gctx := errgroup.WithContext(ctx)
	for i, day := range days {
		i, day := i, day
		pool := byDay[day]
		if len(pool) == 0 {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			specsByDay[i] = buildDaySpecs(day, pool, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logging.Warningf(ctx, "blockbuilder: day fan-out aborted: %s", err)
	}

	var out []model.Block
	for i, day := range days {
		specs := specsByDay[i]
		if len(specs) == 0 {
			continue
		}
		blocks := make([]model.Block, len(specs))
		for j, spec := range specs {
			blocks[j] = spec.withID(newID())
		}
		logging.Debugf(ctx, "blockbuilder: day %s produced %d blocks from %d instances", day, len(blocks), len(byDay[day]))
		out = append(out, blocks...)
	}
	return out
}

// groupByDayWithCarry buckets instances by the day whose block pool they
// can participate in: an instance belongs to its own Day, and a
// cross-midnight instance additionally seeds the following day's pool
// since its tail end lands there.
func groupByDayWithCarry(instances []model.TourInstance) map[model.Day][]model.TourInstance {
	out := map[model.Day][]model.TourInstance{}
	for _, inst := range instances {
		out[inst.Day] = append(out[inst.Day], inst)
		if inst.CrossesMidnight {
			out[inst.Day.Next()] = append(out[inst.Day.Next()], inst)
		}
	}
	for day := range out {
		pool := out[day]
		sort.SliceStable(pool, func(i, j int) bool {
			return pool[i].StartDatetime.Before(pool[j].StartDatetime)
		})
		out[day] = pool
	}
	return out
}

// blockSpec is a candidate block before ID assignment.
type blockSpec struct {
	day                model.Day
	orderedInstanceIDs []string
	typ                model.BlockType
	firstStart         time.Time
	lastEnd            time.Time
	spanMinutes        int
	gapMinutesMax      int
}

func (s blockSpec) withID(id string) model.Block {
	return model.Block{
		ID:                 id,
		Day:                s.day,
		OrderedInstanceIDs: s.orderedInstanceIDs,
		Type:               s.typ,
		FirstStart:         s.firstStart,
		LastEnd:            s.lastEnd,
		SpanMinutes:        s.spanMinutes,
		GapMinutesMax:      s.gapMinutesMax,
	}
}

func buildDaySpecs(day model.Day, pool []model.TourInstance, cfg config.Solver) []blockSpec {
	n := len(pool)
	maxPerDay := cfg.MaxBlocksPerDay
	var threes, twos, ones []blockSpec

	for i := 0; i < n; i++ {
		day := pool[i].Day // blocks are anchored on their first instance's day
		for j := i + 1; j < n; j++ {
			if pool[j].StartDatetime.Before(pool[i].EndDatetime) {
				continue // overlap, never legal
			}
			gapIJ := pool[j].StartDatetime.Sub(pool[i].EndDatetime)

			if s, ok := tryAuthoredSplit(day, pool[i], pool[j]); ok {
				twos = append(twos, s)
			} else if s, ok := tryTwo(day, pool[i], pool[j], gapIJ, cfg); ok {
				twos = append(twos, s)
			}

			if !inBand(gapIJ, cfg.TripleGapMinMinutes, cfg.TripleGapMaxMinutes) {
				continue
			}
			for k := j + 1; k < n; k++ {
				if pool[k].StartDatetime.Before(pool[j].EndDatetime) {
					continue
				}
				gapJK := pool[k].StartDatetime.Sub(pool[j].EndDatetime)
				if !inBand(gapJK, cfg.TripleGapMinMinutes, cfg.TripleGapMaxMinutes) {
					continue
				}
				span := pool[k].EndDatetime.Sub(pool[i].StartDatetime)
				if span > threeChainSpanLimit {
					continue
				}
				threes = append(threes, blockSpec{
					day:                day,
					orderedInstanceIDs: []string{pool[i].ID, pool[j].ID, pool[k].ID},
					typ:                model.BlockThreeChain,
					firstStart:         pool[i].StartDatetime,
					lastEnd:            pool[k].EndDatetime,
					spanMinutes:        int(span.Minutes()),
					gapMinutesMax:      maxDuration(gapIJ, gapJK),
				})
			}
		}
		ones = append(ones, blockSpec{
			day:                day,
			orderedInstanceIDs: []string{pool[i].ID},
			typ:                model.BlockOne,
			firstStart:         pool[i].StartDatetime,
			lastEnd:            pool[i].EndDatetime,
			spanMinutes:        int(pool[i].Duration().Minutes()),
		})
	}

	var out []blockSpec
	for _, group := range [][]blockSpec{threes, twos, ones} {
		for _, s := range group {
			if len(out) >= maxPerDay {
				return out
			}
			out = append(out, s)
		}
	}
	return out
}

// tryTwo classifies a candidate pair by which gap band it falls in:
// TWO_REG (30-60min, same band as the triple-chain gap) or TWO_SPLIT
// (240-360min). The two bands never overlap so classification is
// unambiguous; a gap outside both bands yields no legal 2-instance block.
func tryTwo(day model.Day, a, b model.TourInstance, gap time.Duration, cfg config.Solver) (blockSpec, bool) {
	span := b.EndDatetime.Sub(a.StartDatetime)
	switch {
	case inBand(gap, cfg.TripleGapMinMinutes, cfg.TripleGapMaxMinutes) && span <= twoRegSpanLimit:
		return blockSpec{
			day:                day,
			orderedInstanceIDs: []string{a.ID, b.ID},
			typ:                model.BlockTwoReg,
			firstStart:         a.StartDatetime,
			lastEnd:            b.EndDatetime,
			spanMinutes:        int(span.Minutes()),
			gapMinutesMax:      int(gap.Minutes()),
		}, true
	case inBand(gap, cfg.SplitBreakMinMinutes, cfg.SplitBreakMaxMinutes) && span <= twoSplitSpanLimit:
		return blockSpec{
			day:                day,
			orderedInstanceIDs: []string{a.ID, b.ID},
			typ:                model.BlockTwoSplit,
			firstStart:         a.StartDatetime,
			lastEnd:            b.EndDatetime,
			spanMinutes:        int(span.Minutes()),
			gapMinutesMax:      int(gap.Minutes()),
		}, true
	default:
		return blockSpec{}, false
	}
}

// tryAuthoredSplit recognizes a pair expanded from one split-notation
// template line by their shared SplitGroupKey and classifies it as
// TWO_SPLIT directly, ahead of tryTwo's gap-timing derivation: an
// authored split's break can fall outside the usual 240-360min band
// (the parser accepts such a line, warning only when the break exceeds
// 10h), so re-deriving
// the type from gap timing alone would silently drop the pairing back
// to two singleton blocks.
func tryAuthoredSplit(day model.Day, a, b model.TourInstance) (blockSpec, bool) {
	if a.SplitGroupKey == "" || a.SplitGroupKey != b.SplitGroupKey {
		return blockSpec{}, false
	}
	span := b.EndDatetime.Sub(a.StartDatetime)
	if span > twoSplitSpanLimit {
		return blockSpec{}, false
	}
	gap := b.StartDatetime.Sub(a.EndDatetime)
	return blockSpec{
		day:                day,
		orderedInstanceIDs: []string{a.ID, b.ID},
		typ:                model.BlockTwoSplit,
		firstStart:         a.StartDatetime,
		lastEnd:            b.EndDatetime,
		spanMinutes:        int(span.Minutes()),
		gapMinutesMax:      int(gap.Minutes()),
	}, true
}

func inBand(d time.Duration, minMinutes, maxMinutes int) bool {
	m := d.Minutes()
	return m >= float64(minMinutes) && m <= float64(maxMinutes)
}

func maxDuration(a, b time.Duration) int {
	if a > b {
		return int(a.Minutes())
	}
	return int(b.Minutes())
}
