// ABOUTME: Search-box filtering over catalog names plus fuzzy "did you mean" suggestions
// ABOUTME: Filter is a case-insensitive substring match; Suggest ranks with sahilm/fuzzy

package catalog

import (
	"strings"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/cases"
)

// maxSuggestions caps how many fuzzy matches Suggest returns.
const maxSuggestions = 5

// Filter returns the names containing query, ignoring case, in their
// original order. An empty query returns a copy of names.
func Filter(names []string, query string) []string {
	if query == "" {
		return append([]string(nil), names...)
	}

	fold := cases.Fold()
	q := fold.String(query)
	var out []string
	for _, n := range names {
		if strings.Contains(fold.String(n), q) {
			out = append(out, n)
		}
	}
	return out
}

// Suggest returns up to five names that fuzzy-match query, best first.
// Used when Filter finds nothing.
func Suggest(names []string, query string) []string {
	if query == "" {
		return nil
	}
	matches := fuzzy.Find(query, names)
	out := make([]string, 0, min(len(matches), maxSuggestions))
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, m.Str)
	}
	return out
}
