// Package version implements the lifecycle state machines for
// ForecastVersion and PlanVersion, and the lock gate that makes a LOCKED
// plan's assignments immutable.
package version

import (
	"go.chromium.org/luci/common/errors"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

var forecastEdges = map[model.ForecastStatus]map[model.ForecastStatus]bool{
	model.ForecastPending: {
		model.ForecastReady:  true,
		model.ForecastFailed: true,
	},
}

var planEdges = map[model.PlanStatus]map[model.PlanStatus]bool{
	model.PlanSolving: {
		model.PlanDraft:  true,
		model.PlanFailed: true,
	},
	model.PlanDraft: {
		model.PlanAudited: true,
		model.PlanFailed:  true,
	},
	model.PlanAudited: {
		model.PlanLockedSt: true,
		model.PlanFailed:   true,
	},
	model.PlanLockedSt: {
		model.PlanSuperseded: true,
	},
}

// TransitionForecast validates a ForecastVersion status change. A
// ForecastVersion is immutable once its status leaves PENDING, so the
// only legal edges originate there.
func TransitionForecast(from, to model.ForecastStatus) error {
	if from == to {
		return nil
	}
	if forecastEdges[from][to] {
		return nil
	}
	return errors.Annotate(model.ErrInvalidTransition, "forecast %s -> %s", from, to).Err()
}

// TransitionPlan validates a PlanVersion status change against the
// monotone lifecycle SOLVING -> DRAFT -> AUDITED -> LOCKED -> SUPERSEDED,
// with SOLVING/DRAFT/AUDITED able to fall to FAILED.
func TransitionPlan(from, to model.PlanStatus) error {
	if from == to {
		return nil
	}
	if planEdges[from][to] {
		return nil
	}
	return errors.Annotate(model.ErrInvalidTransition, "plan %s -> %s", from, to).Err()
}
