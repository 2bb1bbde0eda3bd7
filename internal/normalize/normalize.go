// Package normalize cleans user-typed labels such as custom activities.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Label trims a label, composes it to NFC, strips control characters and
// collapses internal whitespace runs to a single space.
// "  Built\ta   fort " -> "Built a fort".
func Label(raw string) string {
	s := norm.NFC.String(raw)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == 0:
			return -1
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Labels normalises each label, drops blanks and removes repeats while keeping
// first-seen order. The result is never nil.
func Labels(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		l := Label(r)
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// Unique removes exact repeats from already-clean values, keeping first-seen order.
func Unique(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
