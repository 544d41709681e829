package forecast

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeInput applies strip null bytes, normalize CRLF/CR to LF,
// and NFKC-normalize before any hashing or grammar matching happens so
// that visually identical forecasts always produce the same input_hash
// regardless of source encoding quirks.
func normalizeInput(raw []byte) string {
	s := string(raw)
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return norm.NFKC.String(s)
}

func splitLines(normalized string) []string {
	return strings.Split(normalized, "\n")
}
