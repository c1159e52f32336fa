// Package strings holds helpers for comma-separated settings.
package strings

import (
	"strings"
)

// SplitList splits a comma-separated value, dropping blanks and repeats.
// Order of first appearance is preserved.
func SplitList(raw string) []string {
	return split(raw, strings.TrimSpace)
}

// SplitFolded is SplitList for case-insensitive values such as email
// addresses. Every element is lower-cased before comparison.
func SplitFolded(raw string) []string {
	return split(raw, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

func split(raw string, normalize func(string) string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	seen := map[string]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		part = normalize(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}
