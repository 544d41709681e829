// Package diff implements a deterministic diff between two
// ForecastVersions' template sets, keyed by template fingerprint.
package diff

import (
	"fmt"
	"sort"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

type aggregate struct {
	fingerprint string
	count       int
	sample      model.TourTemplate
}

// Compute builds the diff between forecast A's and forecast B's
// template sets. Templates sharing a fingerprint within one side are
// summed, since fingerprint already encodes (day, start, end, depot,
// skill) and Count is how the grammar expresses multiplicity.
func Compute(forecastAID, forecastBID string, a, b []model.TourTemplate) model.DiffResult {
	aggA := aggregateByFingerprint(a)
	aggB := aggregateByFingerprint(b)

	var addedOnly, removedOnly []aggregate
	var added, removed []model.TemplateDelta

	for fp, agg := range aggA {
		if other, ok := aggB[fp]; ok {
			if other.count > agg.count {
				added = append(added, model.TemplateDelta{Fingerprint: fp, Count: other.count - agg.count})
			} else if agg.count > other.count {
				removed = append(removed, model.TemplateDelta{Fingerprint: fp, Count: agg.count - other.count})
			}
			continue
		}
		removedOnly = append(removedOnly, agg)
	}
	for fp, agg := range aggB {
		if _, ok := aggA[fp]; !ok {
			addedOnly = append(addedOnly, agg)
		}
	}

	changed, stillRemoved, stillAdded := matchChanges(removedOnly, addedOnly)
	for _, agg := range stillRemoved {
		removed = append(removed, model.TemplateDelta{Fingerprint: agg.fingerprint, Count: agg.count})
	}
	for _, agg := range stillAdded {
		added = append(added, model.TemplateDelta{Fingerprint: agg.fingerprint, Count: agg.count})
	}

	sortDeltas(added)
	sortDeltas(removed)
	sort.SliceStable(changed, func(i, j int) bool { return changed[i].From.Fingerprint < changed[j].From.Fingerprint })

	return model.DiffResult{
		ForecastAID: forecastAID,
		ForecastBID: forecastBID,
		Added:       added,
		Removed:     removed,
		Changed:     changed,
	}
}

func aggregateByFingerprint(templates []model.TourTemplate) map[string]aggregate {
	out := map[string]aggregate{}
	for _, t := range templates {
		agg := out[t.Fingerprint]
		agg.fingerprint = t.Fingerprint
		agg.count += t.Count
		agg.sample = t
		out[t.Fingerprint] = agg
	}
	return out
}

// scheduleKey identifies a template's (day, start, end) slot independent
// of depot/skill, the looser match a CHANGED classification requires.
func scheduleKey(t model.TourTemplate) string {
	return fmt.Sprintf("%d|%d|%d", t.Day, t.Start, t.End)
}

// matchChanges pairs a removed-only template against an added-only one
// sharing the same (day, start, end) slot and equal count: a strong
// match, reclassified as CHANGED. A slot match with differing counts is a
// weak match and is left as REMOVED+ADDED.
func matchChanges(removedOnly, addedOnly []aggregate) ([]model.FingerprintChange, []aggregate, []aggregate) {
	sort.SliceStable(addedOnly, func(i, j int) bool { return addedOnly[i].fingerprint < addedOnly[j].fingerprint })
	byKey := map[string][]aggregate{}
	for _, agg := range addedOnly {
		k := scheduleKey(agg.sample)
		byKey[k] = append(byKey[k], agg)
	}

	sort.SliceStable(removedOnly, func(i, j int) bool { return removedOnly[i].fingerprint < removedOnly[j].fingerprint })

	usedAdded := map[string]bool{}
	var changed []model.FingerprintChange
	var stillRemoved, stillAdded []aggregate

	for _, rem := range removedOnly {
		k := scheduleKey(rem.sample)
		candidates := byKey[k]
		matched := false
		for _, cand := range candidates {
			if usedAdded[cand.fingerprint] {
				continue
			}
			if cand.count != rem.count {
				continue // weak match: leave as REMOVED+ADDED
			}
			usedAdded[cand.fingerprint] = true
			changed = append(changed, model.FingerprintChange{From: rem.sample, To: cand.sample})
			matched = true
			break
		}
		if !matched {
			stillRemoved = append(stillRemoved, rem)
		}
	}
	for _, add := range addedOnly {
		if !usedAdded[add.fingerprint] {
			stillAdded = append(stillAdded, add)
		}
	}
	return changed, stillRemoved, stillAdded
}

func sortDeltas(deltas []model.TemplateDelta) {
	sort.SliceStable(deltas, func(i, j int) bool { return deltas[i].Fingerprint < deltas[j].Fingerprint })
}
