package forecast

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.chromium.org/luci/common/logging"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

// LineResult is the per-line outcome the parser reports.
type LineResult struct {
	LineNo   int
	Raw      string
	Status   model.ParseStatus
	Reason   string // set on WARN or FAIL
	Template *model.TourTemplate
}

// Result is everything Parse produces for one forecast text: the
// templates recognized (even if the overall forecast ends up FAILED, so
// callers can show partial diagnostics), the per-line trail, and the
// hashes needed to build a ForecastVersion.
type Result struct {
	Templates        []model.TourTemplate
	Lines            []LineResult
	Status           model.ForecastStatus
	InputHash        string
	ParserConfigHash string
}

// Parse runs the whitelist grammar over raw forecast text. It never
// panics on malformed input and never silently drops a line: every
// non-blank, non-comment line produces exactly one LineResult.
func Parse(ctx context.Context, raw []byte, wl WhitelistConfig) (Result, error) {
	parserConfigHash, err := wl.Hash()
	if err != nil {
		return Result{}, err
	}

	normalized := normalizeInput(raw)
	lines := splitLines(normalized)

	var (
		results   []LineResult
		templates []model.TourTemplate
		canonical []string
		failed    bool
	)

	for i, rawLine := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(rawLine)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		lr := parseLine(lineNo, trimmed, wl)
		results = append(results, lr)
		if lr.Status == model.ParseFail {
			failed = true
			logging.Warningf(ctx, "forecast line %d FAIL: %s", lineNo, lr.Reason)
			continue
		}
		if lr.Status == model.ParseWarn {
			logging.Infof(ctx, "forecast line %d WARN: %s", lineNo, lr.Reason)
		}
		templates = append(templates, *lr.Template)
		canonical = append(canonical, canonicalLine(*lr.Template))
	}

	status := model.ForecastReady
	if failed {
		status = model.ForecastFailed
	}

	inputHash := hashCanonicalLines(canonical)

	return Result{
		Templates:        templates,
		Lines:            results,
		Status:           status,
		InputHash:        inputHash,
		ParserConfigHash: parserConfigHash,
	}, nil
}

// parseLine implements the grammar production:
//
//	LINE := DAY WS TIME "-" TIME [WS "+" WS TIME "-" TIME]
//	        [ WS COUNT WS "Fahrer" ]
//	        [ WS DEPOT ]
//	        [ WS SKILL ]
func parseLine(lineNo int, line string, wl WhitelistConfig) LineResult {
	fail := func(format string, args ...interface{}) LineResult {
		return LineResult{LineNo: lineNo, Raw: line, Status: model.ParseFail, Reason: fmt.Sprintf(format, args...)}
	}

	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return fail("expected at least DAY and TIME-TIME, got %q", line)
	}

	day, ok := model.ParseDay(tokens[0])
	if !ok {
		return fail("unrecognized day %q", tokens[0])
	}

	start, end, ok := timeRange(tokens[1])
	if !ok {
		return fail("malformed or zero-length time range %q", tokens[1])
	}
	idx := 2

	var splitStart, splitEnd *time.Duration
	if idx < len(tokens) && tokens[idx] == "+" {
		if idx+1 >= len(tokens) {
			return fail("split marker '+' not followed by a time range")
		}
		ss, se, ok := timeRange(tokens[idx+1])
		if !ok {
			return fail("malformed split time range %q", tokens[idx+1])
		}
		// Split segments must not overlap or run in reverse order.
		if ss <= end {
			return fail("split segment starts at or before the first segment ends")
		}
		splitStart, splitEnd = &ss, &se
		idx += 2
	}

	var warn string
	count := 1
	if idx+1 < len(tokens) {
		if n, err := strconv.Atoi(tokens[idx]); err == nil && isFahrerToken(tokens[idx+1]) {
			if n < 1 {
				return fail("count must be >= 1, got %d", n)
			}
			count = n
			idx += 2
		}
	}

	var depot, skill string
	remaining := tokens[idx:]
	switch len(remaining) {
	case 0:
		// no depot or skill
	case 1:
		tok := remaining[0]
		switch {
		case wl.Depots.Has(tok):
			depot = tok
		case wl.Skills.Has(tok):
			skill = tok
		default:
			return fail("unknown depot/skill token %q", tok)
		}
	case 2:
		if !wl.Depots.Has(remaining[0]) {
			return fail("unknown depot token %q", remaining[0])
		}
		if !wl.Skills.Has(remaining[1]) {
			return fail("unknown skill token %q", remaining[1])
		}
		depot, skill = remaining[0], remaining[1]
	default:
		return fail("unexpected trailing tokens %q", strings.Join(remaining, " "))
	}

	crossesMidnight := end <= start
	effEnd := effectiveEnd(start, end)
	if splitEnd != nil {
		crossesMidnight = *splitEnd <= start
		effEnd = *splitEnd
		if crossesMidnight {
			effEnd += 24 * time.Hour
		}
	}

	if count >= wl.HighCount {
		warn = fmt.Sprintf("count %d >= high-count threshold %d", count, wl.HighCount)
	}
	span := effEnd - start
	if span > 12*time.Hour {
		if warn != "" {
			warn += "; "
		}
		warn += fmt.Sprintf("span %s exceeds 12h", span)
	}
	if splitStart != nil {
		gap := *splitStart - end
		if gap > 10*time.Hour {
			if warn != "" {
				warn += "; "
			}
			warn += fmt.Sprintf("unusually long split gap %s", gap)
		}
	}

	fp := fingerprint(day, start, end, splitStart, splitEnd, depot, skill)
	tmpl := model.TourTemplate{
		Day:             day,
		Start:           start,
		End:             end,
		SplitStart:      splitStart,
		SplitEnd:        splitEnd,
		Depot:           depot,
		Skill:           skill,
		Count:           count,
		Fingerprint:     fp,
		CrossesMidnight: crossesMidnight,
	}

	status := model.ParsePass
	if warn != "" {
		status = model.ParseWarn
	}
	return LineResult{LineNo: lineNo, Raw: line, Status: status, Reason: warn, Template: &tmpl}
}
