package storage

import "go.chromium.org/luci/common/errors"

func errNotFound(kind, id string) error {
	return errors.Reason("%s %q not found", kind, id).Err()
}

func errMismatchedPlan(want, got string) error {
	return errors.Reason("assignment row targets plan %q, batch insert is for plan %q", got, want).Err()
}
