// Package config holds the enumerated solver configuration options and
// their canonical hash, which becomes part of every PlanVersion and
// therefore part of the reproducibility guarantee.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"go.chromium.org/luci/common/errors"
)

// Solver is the full set of options. Zero-value fields are never
// used directly; call Default() and override selectively.
type Solver struct {
	Seed                 int64   `json:"seed"`
	WeeklyHoursCapMin    int     `json:"weekly_hours_cap_minutes"`
	FreezeWindowMinutes  int     `json:"freeze_window_minutes"`
	TripleGapMinMinutes  int     `json:"triple_gap_min"`
	TripleGapMaxMinutes  int     `json:"triple_gap_max"`
	SplitBreakMinMinutes int     `json:"split_break_min"`
	SplitBreakMaxMinutes int     `json:"split_break_max"`
	ChurnWeight          float64 `json:"churn_weight"`
	MaxRounds            int     `json:"max_rounds"`
	RMPTimeLimitS        int     `json:"rmp_time_limit_s"`
	FinalTimeLimitS      int     `json:"final_time_limit_s"`
	MaxCandidatesPerDuty int     `json:"max_candidates_per_duty"`
	NRepairOps           int     `json:"n_repair_ops"`
	MaxBlocksPerDay      int     `json:"max_blocks_per_day"`
	HighCountWarn        int     `json:"high_count_warn"`
	RosterPoolPerBand    int     `json:"roster_pool_per_band"`
	TotalBudgetSeconds   int     `json:"total_budget_s"`
}

// Default returns the documented defaults.
func Default() Solver {
	return Solver{
		Seed:                 0,
		WeeklyHoursCapMin:    55 * 60,
		FreezeWindowMinutes:  720,
		TripleGapMinMinutes:  30,
		TripleGapMaxMinutes:  60,
		SplitBreakMinMinutes: 240,
		SplitBreakMaxMinutes: 360,
		ChurnWeight:          0.0,
		MaxRounds:            500,
		RMPTimeLimitS:        45,
		FinalTimeLimitS:      300,
		MaxCandidatesPerDuty: 50,
		NRepairOps:           25,
		MaxBlocksPerDay:      20000,
		HighCountWarn:        10,
		RosterPoolPerBand:    150,
		TotalBudgetSeconds:   600,
	}
}

// Validate rejects configurations that can never produce a legal schedule
// (e.g. an inverted gap band), catching operator typos early rather than
// surfacing them as a confusing SolverInfeasible deep in the RMP.
func (s Solver) Validate() error {
	if s.TripleGapMinMinutes > s.TripleGapMaxMinutes {
		return errors.Reason("triple_gap_min %d > triple_gap_max %d", s.TripleGapMinMinutes, s.TripleGapMaxMinutes).Err()
	}
	if s.SplitBreakMinMinutes > s.SplitBreakMaxMinutes {
		return errors.Reason("split_break_min %d > split_break_max %d", s.SplitBreakMinMinutes, s.SplitBreakMaxMinutes).Err()
	}
	if s.WeeklyHoursCapMin <= 0 {
		return errors.Reason("weekly_hours_cap must be positive, got %d", s.WeeklyHoursCapMin).Err()
	}
	if s.MaxRounds <= 0 {
		return errors.Reason("max_rounds must be positive, got %d", s.MaxRounds).Err()
	}
	return nil
}

// Hash computes solver_config_hash = SHA-256(canonical_json(options,
// sorted keys)), folding in the forecast's parser_config_hash so the
// reproducibility guarantee covers the whole pipeline, not just the
// solver stage ("included in the PlanVersion's solver_config_hash
// for full reproducibility").
func (s Solver) Hash(parserConfigHash string) (string, error) {
	solverJSON, err := json.Marshal(s)
	if err != nil {
		return "", errors.Annotate(err, "marshal solver config").Err()
	}
	var solverFields map[string]json.RawMessage
	if err := json.Unmarshal(solverJSON, &solverFields); err != nil {
		return "", errors.Annotate(err, "re-read solver config").Err()
	}
	// encoding/json writes map keys in sorted order, and the two outer
	// fields are declared in sorted order, so the whole document comes out
	// with sorted keys.
	canonical := struct {
		ParserConfigHash string                     `json:"parser_config_hash"`
		Solver           map[string]json.RawMessage `json:"solver"`
	}{
		ParserConfigHash: parserConfigHash,
		Solver:           solverFields,
	}
	raw, err := json.Marshal(canonical)
	if err != nil {
		return "", errors.Annotate(err, "marshal solver config").Err()
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
