package validator

import (
	"context"

	"go.chromium.org/luci/common/logging"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

// Result is one full seven-check pass.
type Result struct {
	Records []model.AuditRecord
	Passed  bool
}

// RunAll executes the seven checks in model.OrderedChecks order. Later
// checks still run even after an earlier one fails, so a single pass
// always reports every failing dimension, not just the first.
func RunAll(ctx context.Context, in Input) Result {
	var records []model.AuditRecord
	passed := true
	for _, name := range model.OrderedChecks {
		rec := checksByName[name](ctx, in)
		records = append(records, rec)
		if rec.Status == model.AuditFail {
			passed = false
			logging.Warningf(ctx, "validator: %s FAILED: %s", name, rec.Details)
		}
	}
	return Result{Records: records, Passed: passed}
}
