// ABOUTME: Display-width helpers for archive names with wide or combined characters
// ABOUTME: Grapheme-aware via uniseg; cell widths from go-runewidth

package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const ellipsis = "…"

// visibleWidth returns the number of terminal cells s occupies.
func visibleWidth(s string) int {
	w := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		w += clusterWidth(cluster)
	}
	return w
}

func clusterWidth(cluster string) int {
	r, _ := utf8.DecodeRuneInString(cluster)
	return runewidth.RuneWidth(r)
}

// truncate shortens s to at most w cells, ending with an ellipsis when
// anything was cut. Grapheme clusters are never split.
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if visibleWidth(s) <= w {
		return s
	}

	limit := w - runewidth.StringWidth(ellipsis)
	var b strings.Builder
	used := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		cw := clusterWidth(cluster)
		if used+cw > limit {
			break
		}
		b.WriteString(cluster)
		used += cw
	}
	b.WriteString(ellipsis)
	return b.String()
}

// padRight pads s with spaces to exactly w cells, truncating if needed.
func padRight(s string, w int) string {
	s = truncate(s, w)
	if gap := w - visibleWidth(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}
