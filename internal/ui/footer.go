package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// footerHint defines a key hint for the footer bar.
// These are intentionally shorter than the KeyMap help text.
type footerHint struct {
	key  string // Short symbol: "↑↓", "⏎", "q", etc.
	desc string // Short description: "Navigate", "Back", etc.
}

var menuFooterHints = []footerHint{
	{"↑↓", "Navigate"},
	{"⏎", "Details"},
	{"q", "Quit"},
}

var detailFooterHints = []footerHint{
	{"⏎", "Execute"},
	{"⌫", "Back"},
	{"c", "Copy"},
}

// detailScrollHint is added when the detail view does not fit.
var detailScrollHint = footerHint{"↑↓", "Scroll"}

// renderFooter renders pill-style key hints with the status message
// right-aligned. Hints are dropped from the end when the width is too small.
func renderFooter(hints []footerHint, f Frame) string {
	status := ""
	if f.Status != "" {
		style := styleFooterMuted
		if f.StatusFailed {
			style = styleErrorIndicator
		}
		status = style.Render(f.Status)
	}
	if len(hints) == 0 && status == "" {
		return ""
	}

	statusWidth := lipgloss.Width(status)
	if f.Width > 0 {
		hints = trimHintsToFit(hints, f.Width-statusWidth-4)
	}

	left := joinHints(hints)
	if status == "" {
		return left
	}
	if left == "" {
		return status
	}

	spacing := 2
	if f.Width > 0 {
		spacing = max(f.Width-lipgloss.Width(left)-statusWidth, 2)
	}
	return left + strings.Repeat(" ", spacing) + status
}

// keyPill renders a single key hint as a pill with description.
func keyPill(key, desc string) string {
	return styleKeyPill.Render(" "+key+" ") + " " + styleKeyDesc.Render(desc)
}

// trimHintsToFit progressively removes hints from the end to fit available width.
func trimHintsToFit(hints []footerHint, availableWidth int) []footerHint {
	for len(hints) > 0 && lipgloss.Width(joinHints(hints)) > availableWidth {
		hints = hints[:len(hints)-1]
	}
	return hints
}

func joinHints(hints []footerHint) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, keyPill(h.key, h.desc))
	}
	return strings.Join(parts, "  ")
}
