// Package expander implements materializing TourTemplates with
// count=k into k concrete, datetime-stamped TourInstances. This is the
// 1:1 substrate every downstream component (blocks, rosters, the RMP,
// the validator) operates on — never the template.
package expander

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

// IDFunc mints a TourInstance ID. Production callers pass
// idgen.Sequential("TI"); tests pass their own deterministic sequence so
// expected output is reproducible without touching the clock or a
// random source.
type IDFunc func() string

// Expand materializes every template's instances and returns them sorted
// by the tie-break key: (day, start_datetime, template.fingerprint,
// instance_no). weekAnchor must be a Monday; Expand does not re-validate
// that here (the CLI's parseWeekAnchor rejects any other weekday).
func Expand(ctx context.Context, templates []model.TourTemplate, weekAnchor time.Time, newID IDFunc) ([]model.TourInstance, error) {
	var out []model.TourInstance

	for _, t := range templates {
		if t.Count < 1 {
			return nil, errors.Reason("template %s has count %d < 1", t.Fingerprint, t.Count).Err()
		}
		dayStart := weekAnchor.AddDate(0, 0, t.Day.Offset())

		for n := 1; n <= t.Count; n++ {
			if t.IsSplit() {
				groupKey := fmt.Sprintf("%s#%d", t.Fingerprint, n)
				seg1, err := buildInstance(t, dayStart, t.Start, t.End, n, newID())
				if err != nil {
					return nil, err
				}
				seg1.SplitSegment, seg1.SplitGroupKey = 1, groupKey
				seg2, err := buildInstance(t, dayStart, *t.SplitStart, *t.SplitEnd, n, newID())
				if err != nil {
					return nil, err
				}
				seg2.SplitSegment, seg2.SplitGroupKey = 2, groupKey
				out = append(out, seg1, seg2)
				continue
			}
			inst, err := buildInstance(t, dayStart, t.Start, t.End, n, newID())
			if err != nil {
				return nil, err
			}
			out = append(out, inst)
		}
	}

	sortInstances(out)
	logging.Debugf(ctx, "expander: %d templates -> %d instances", len(templates), len(out))
	return out, nil
}

func buildInstance(t model.TourTemplate, dayStart time.Time, start, end time.Duration, instanceNo int, id string) (model.TourInstance, error) {
	if end == start {
		return model.TourInstance{}, errors.Reason("instance end == start for template %s", t.Fingerprint).Err()
	}
	startDT := dayStart.Add(start)
	endDT := dayStart.Add(end)
	crosses := end <= start
	if crosses {
		endDT = dayStart.Add(end + 24*time.Hour)
	}
	return model.TourInstance{
		ID:              id,
		TemplateID:      t.ID,
		InstanceNo:      instanceNo,
		Day:             t.Day,
		StartDatetime:   startDT,
		EndDatetime:     endDT,
		CrossesMidnight: crosses,
		Depot:           t.Depot,
		Skill:           t.Skill,
		Fingerprint:     t.Fingerprint,
	}, nil
}

// sortInstances applies the deterministic tie-break key in place.
func sortInstances(instances []model.TourInstance) {
	sort.SliceStable(instances, func(i, j int) bool {
		a, b := instances[i], instances[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if !a.StartDatetime.Equal(b.StartDatetime) {
			return a.StartDatetime.Before(b.StartDatetime)
		}
		if a.Fingerprint != b.Fingerprint {
			return a.Fingerprint < b.Fingerprint
		}
		return a.InstanceNo < b.InstanceNo
	})
}
