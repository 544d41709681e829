package forecast

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
)

func fmtHM(d time.Duration) string {
	total := int(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// fingerprint computes H(day, start, end, depot, skill); split segments
// are folded in so a split and non-split tour at the same
// (day, start, end) never collide.
func fingerprint(day model.Day, start, end time.Duration, splitStart, splitEnd *time.Duration, depot, skill string) string {
	parts := []string{day.String(), fmtHM(start), fmtHM(end)}
	if splitStart != nil && splitEnd != nil {
		parts = append(parts, fmtHM(*splitStart), fmtHM(*splitEnd))
	}
	parts = append(parts, depot, skill)
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// canonicalLine renders a template to its canonical form:
// "DAY|START-END|[SPLIT]|count|depot|skill". Canonicalization
// happens before tokens are re-sorted for hashing; this is the per-line
// normal form, not the cross-line ordering.
func canonicalLine(t model.TourTemplate) string {
	splitPart := ""
	if t.IsSplit() {
		splitPart = fmt.Sprintf("%s-%s", fmtHM(*t.SplitStart), fmtHM(*t.SplitEnd))
	}
	return strings.Join([]string{
		t.Day.String(),
		fmt.Sprintf("%s-%s", fmtHM(t.Start), fmtHM(t.End)),
		splitPart,
		fmt.Sprintf("%d", t.Count),
		t.Depot,
		t.Skill,
	}, "|")
}

// hashCanonicalLines sorts canonical lines lexicographically and hashes
// their newline-joined concatenation, giving identical forecasts
// (byte-for-byte, modulo line order and NFKC-insensitive spelling) the
// same input_hash regardless of how the lines were originally ordered.
func hashCanonicalLines(lines []string) string {
	sorted := append([]string(nil), lines...)
	sort.Strings(sorted)
	joined := strings.Join(sorted, "\n")
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}
