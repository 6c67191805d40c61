package audit

import (
	"strings"
	"unicode"
)

// Clean turns a raw extracted string into a validation-ready candidate.
// Whitespace runs collapse to one space and every trailing colon is dropped.
// An empty result means the value is absent. Clean is idempotent.
func Clean(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	return strings.TrimRightFunc(s, func(r rune) bool {
		return r == ':' || unicode.IsSpace(r)
	})
}

// cleanCode is Clean followed by case folding, used for criteria codes.
func cleanCode(raw string) string {
	return strings.ToLower(Clean(raw))
}

// trimCandidate strips label punctuation a regex capture tends to drag along.
func trimCandidate(raw string) string {
	s := Clean(raw)
	s = strings.TrimLeft(s, "/: ")
	s = strings.TrimRight(s, ".,; ")
	return Clean(s)
}
