// Package forecast implements the whitelist parser: it turns raw
// Slack/CSV forecast text into canonical TourTemplates and a stable
// input_hash, rejecting anything outside the recognized grammar rather
// than guessing at intent.
package forecast

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"go.chromium.org/luci/common/data/stringset"
	"go.chromium.org/luci/common/errors"
)

// WhitelistConfig is the versioned whitelist the grammar checks tokens
// against ("day aliases, depot dictionary, skill dictionary").
// Depots and skills are optional per line; when a dictionary is empty,
// any DEPOT/SKILL token present on a line is treated as unknown (FAIL),
// since there is nothing to have meant.
type WhitelistConfig struct {
	Version   string
	Depots    stringset.Set
	Skills    stringset.Set
	HighCount int // count >= HighCount triggers a WARN, not a FAIL
}

// DefaultWhitelist is a small operator-maintained starter dictionary;
// production deployments load their own via NewWhitelist.
func DefaultWhitelist() WhitelistConfig {
	return NewWhitelist("v1",
		[]string{"DepotNord", "DepotSued", "DepotOst", "DepotWest"},
		[]string{"Kuehlware", "Express", "Sperrgut"},
		10,
	)
}

// NewWhitelist builds a WhitelistConfig from plain string slices,
// deduplicating and sorting them via stringset so config hashing is
// insensitive to input ordering.
func NewWhitelist(version string, depots, skills []string, highCount int) WhitelistConfig {
	return WhitelistConfig{
		Version:   version,
		Depots:    stringset.NewFromSlice(depots...),
		Skills:    stringset.NewFromSlice(skills...),
		HighCount: highCount,
	}
}

// Hash computes parser_config_hash = SHA-256(canonical_json(config)),
// folded later into PlanVersion.SolverConfigHash.
func (c WhitelistConfig) Hash() (string, error) {
	canonical := struct {
		Version   string   `json:"version"`
		Depots    []string `json:"depots"`
		Skills    []string `json:"skills"`
		HighCount int      `json:"high_count"`
	}{
		Version:   c.Version,
		Depots:    sortedOrEmpty(c.Depots),
		Skills:    sortedOrEmpty(c.Skills),
		HighCount: c.HighCount,
	}
	raw, err := json.Marshal(canonical)
	if err != nil {
		return "", errors.Annotate(err, "marshal whitelist config").Err()
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func sortedOrEmpty(s stringset.Set) []string {
	if s.Len() == 0 {
		return []string{}
	}
	out := s.ToSlice()
	sort.Strings(out)
	return out
}
