// Package idgen mints the deterministic IDs the expander and block
// builder need. A random generator (uuid.NewString and similar) would
// make output_hash depend on process-local randomness instead of only
// on (input_hash, seed, solver_config_hash): two processes solving the
// same forecast would mint different instance/block IDs and disagree on
// the hash despite computing the same schedule. Since both callers mint
// IDs in a fixed, input-derived order (see expander.Expand and
// blockbuilder.Build), a running counter is enough to make every ID a
// pure function of that order.
package idgen

import "fmt"

// Sequential returns an IDFunc-compatible closure that mints
// prefix-NNNNNN, incrementing on every call. Two closures built from the
// same prefix and called in the same order produce identical ID streams.
func Sequential(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%06d", prefix, n)
	}
}
