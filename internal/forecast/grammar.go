package forecast

import (
	"strconv"
	"strings"
	"time"
)

// timeOfDay parses "HH:MM" into a time.Duration offset from midnight,
// enforcing 00<=HH<=23 and 00<=MM<=59 per the TIME production.
func timeOfDay(token string) (time.Duration, bool) {
	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	if len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, false
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, true
}

// timeRange parses "HH:MM-HH:MM" into (start, end), rejecting malformed
// or equal-valued ranges (end == start is a FAIL).
func timeRange(token string) (start, end time.Duration, ok bool) {
	idx := strings.Index(token, "-")
	if idx <= 0 || idx == len(token)-1 {
		return 0, 0, false
	}
	s, sok := timeOfDay(token[:idx])
	e, eok := timeOfDay(token[idx+1:])
	if !sok || !eok {
		return 0, 0, false
	}
	if s == e {
		return 0, 0, false
	}
	return s, e, true
}

func isFahrerToken(token string) bool {
	return strings.EqualFold(token, "Fahrer")
}

// effectiveEnd returns end, or end+24h if the tour crosses midnight
// (end <= start), matching the Expander's rule. Used here only to
// evaluate the WARN-level "span > 12h" heuristic during parsing.
func effectiveEnd(start, end time.Duration) time.Duration {
	if end <= start {
		return end + 24*time.Hour
	}
	return end
}
