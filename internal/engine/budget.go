package engine

import "time"

// phaseBudget splits a solve's total time budget: block building 20%,
// roster+RMP 65%, repair 8%, leaving profiling and a buffer unaccounted
// for here. Profiling happens at the CLI layer (cmd/solvereign's
// --cpuprofile flag) and the buffer is headroom left deliberately unspent
// for persistence and cleanup.
type phaseBudget struct {
	blockBuilding time.Duration
	rosterRMP     time.Duration
	repair        time.Duration
}

func newBudget(totalSeconds int) phaseBudget {
	total := time.Duration(totalSeconds) * time.Second
	return phaseBudget{
		blockBuilding: total * 20 / 100,
		rosterRMP:     total * 65 / 100,
		repair:        total * 8 / 100,
	}
}
