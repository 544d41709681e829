package validator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.chromium.org/luci/common/clock"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

const (
	restMinimum          = 11 * time.Hour
	spanRegularMax       = 14 * time.Hour
	spanSplitMax         = 16 * time.Hour
	splitGapMinMinutes   = 240
	splitGapMaxMinutes   = 360
	maxWeeklyHoursMinute = 55 * 60
)

type checkFunc func(ctx context.Context, in Input) model.AuditRecord

// checksByName wires each model.OrderedChecks entry to its implementation;
// RunAll iterates OrderedChecks rather than this map's keys, so map
// iteration order never leaks into audit ordering.
var checksByName = map[model.CheckName]checkFunc{
	model.CheckCoverage:    checkCoverage,
	model.CheckOverlap:     checkOverlap,
	model.CheckRest:        checkRest,
	model.CheckSpanRegular: checkSpanRegular,
	model.CheckSpanSplit:   checkSpanSplit,
	model.CheckFatigue:     checkFatigue,
	model.CheckMaxWeekly:   checkMaxWeekly,
}

func record(ctx context.Context, name model.CheckName, status model.AuditStatus, counters map[string]int, details string) model.AuditRecord {
	return model.AuditRecord{
		CheckName: name,
		Status:    status,
		Counters:  counters,
		Details:   details,
		CreatedAt: clock.Now(ctx),
	}
}

func checkCoverage(ctx context.Context, in Input) model.AuditRecord {
	assignedCount := map[string]int{}
	for _, a := range in.Assignments {
		assignedCount[a.TourInstanceID]++
	}
	var uncovered, duplicated int
	for _, inst := range in.Instances {
		switch assignedCount[inst.ID] {
		case 1:
		case 0:
			uncovered++
		default:
			duplicated++
		}
	}
	if uncovered == 0 && duplicated == 0 {
		return record(ctx, model.CheckCoverage, model.AuditPass, nil, "")
	}
	return record(ctx, model.CheckCoverage, model.AuditFail,
		map[string]int{"uncovered": uncovered, "duplicated": duplicated},
		fmt.Sprintf("%d instances uncovered, %d double-assigned", uncovered, duplicated))
}

func checkOverlap(ctx context.Context, in Input) model.AuditRecord {
	instances := in.instanceByID()
	violations := 0
	for _, driver := range in.driverLabelsSorted() {
		var assigned []model.TourInstance
		for _, a := range in.Assignments {
			if a.DriverLabel != driver {
				continue
			}
			if inst, ok := instances[a.TourInstanceID]; ok {
				assigned = append(assigned, inst)
			}
		}
		sort.SliceStable(assigned, func(i, j int) bool { return assigned[i].StartDatetime.Before(assigned[j].StartDatetime) })
		for i := 1; i < len(assigned); i++ {
			if assigned[i-1].Overlaps(assigned[i]) {
				violations++
			}
		}
	}
	if violations == 0 {
		return record(ctx, model.CheckOverlap, model.AuditPass, nil, "")
	}
	return record(ctx, model.CheckOverlap, model.AuditFail,
		map[string]int{"overlapping_pairs": violations},
		fmt.Sprintf("%d overlapping instance pairs", violations))
}

func checkRest(ctx context.Context, in Input) model.AuditRecord {
	violations := 0
	for _, blocks := range in.driverBlocks() {
		for i := 1; i < len(blocks); i++ {
			rest := blocks[i].FirstStart.Sub(blocks[i-1].LastEnd)
			if rest < restMinimum {
				violations++
			}
		}
	}
	if violations == 0 {
		return record(ctx, model.CheckRest, model.AuditPass, nil, "")
	}
	return record(ctx, model.CheckRest, model.AuditFail,
		map[string]int{"violating_pairs": violations},
		fmt.Sprintf("%d consecutive-block pairs with rest < 11h", violations))
}

func checkSpanRegular(ctx context.Context, in Input) model.AuditRecord {
	violations := 0
	for _, blocks := range in.driverBlocks() {
		for _, b := range blocks {
			if b.Type != model.BlockOne && b.Type != model.BlockTwoReg {
				continue
			}
			if b.Span() > spanRegularMax {
				violations++
			}
		}
	}
	if violations == 0 {
		return record(ctx, model.CheckSpanRegular, model.AuditPass, nil, "")
	}
	return record(ctx, model.CheckSpanRegular, model.AuditFail,
		map[string]int{"violating_blocks": violations},
		fmt.Sprintf("%d ONE/TWO_REG blocks exceed 14h span", violations))
}

func checkSpanSplit(ctx context.Context, in Input) model.AuditRecord {
	spanViolations, gapViolations := 0, 0
	for _, blocks := range in.driverBlocks() {
		for _, b := range blocks {
			switch b.Type {
			case model.BlockTwoSplit:
				if b.Span() > spanSplitMax {
					spanViolations++
				}
				if b.GapMinutesMax < splitGapMinMinutes || b.GapMinutesMax > splitGapMaxMinutes {
					gapViolations++
				}
			case model.BlockThreeChain:
				if b.Span() > spanSplitMax {
					spanViolations++
				}
			}
		}
	}
	if spanViolations == 0 && gapViolations == 0 {
		return record(ctx, model.CheckSpanSplit, model.AuditPass, nil, "")
	}
	return record(ctx, model.CheckSpanSplit, model.AuditFail,
		map[string]int{"span_violations": spanViolations, "gap_violations": gapViolations},
		fmt.Sprintf("%d span violations, %d split-gap violations", spanViolations, gapViolations))
}

func checkFatigue(ctx context.Context, in Input) model.AuditRecord {
	violations := 0
	for _, blocks := range in.driverBlocks() {
		for i := 1; i < len(blocks); i++ {
			prev, cur := blocks[i-1], blocks[i]
			if prev.Type == model.BlockThreeChain && cur.Type == model.BlockThreeChain && prev.Day.Next() == cur.Day {
				violations++
			}
		}
	}
	if violations == 0 {
		return record(ctx, model.CheckFatigue, model.AuditPass, nil, "")
	}
	return record(ctx, model.CheckFatigue, model.AuditFail,
		map[string]int{"violating_pairs": violations},
		fmt.Sprintf("%d consecutive-day THREE_CHAIN pairs", violations))
}

func checkMaxWeekly(ctx context.Context, in Input) model.AuditRecord {
	violations := 0
	for _, blocks := range in.driverBlocks() {
		total := 0
		for _, b := range blocks {
			total += b.WorkMinutes()
		}
		if total > maxWeeklyHoursMinute {
			violations++
		}
	}
	if violations == 0 {
		return record(ctx, model.CheckMaxWeekly, model.AuditPass, nil, "")
	}
	return record(ctx, model.CheckMaxWeekly, model.AuditFail,
		map[string]int{"violating_drivers": violations},
		fmt.Sprintf("%d drivers exceed 55h/week", violations))
}
