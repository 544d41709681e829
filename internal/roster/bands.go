package roster

// band is a target weekly-hour range the generator aims for when building
// a roster via multi-stage heuristic enumeration against target FTE
// hour bands (e.g., 47-53h, 42-47h, 30-42h). These are illustrative
// defaults; operators tune them by editing this slice if their workforce
// mix differs.
type band struct {
	name          string
	minHours      float64
	maxHours      float64
	rosterPerBand int
}

func bands(perBand int) []band {
	return []band{
		{name: "peak", minHours: 47, maxHours: 53, rosterPerBand: perBand},
		{name: "mid", minHours: 42, maxHours: 47, rosterPerBand: perBand},
		{name: "lower", minHours: 30, maxHours: 42, rosterPerBand: perBand},
	}
}
