package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// clampLines truncates every line to width cells and drops lines past height.
// Non-positive limits leave that dimension alone.
func clampLines(lines []string, width, height int) []string {
	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	if width <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = ansi.Truncate(line, width, "…")
	}
	return out
}

// indentLines prefixes each line of text with n spaces.
func indentLines(text string, n int) []string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = pad + line
	}
	return lines
}

func maxIDWidth(ids []string) int {
	max := 0
	for _, id := range ids {
		if w := ansi.StringWidth(id); w > max {
			max = w
		}
	}
	return max
}
