package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const (
	detailIndent   = 2
	ruleNameIndent = 4
)

var (
	cPurple     = lipgloss.Color("99")
	cCyan       = lipgloss.Color("39")
	cNeonGreen  = lipgloss.Color("118")
	cRed        = lipgloss.Color("203")
	cGold       = lipgloss.Color("220")
	cBrightGray = lipgloss.Color("246")
	cLightGray  = lipgloss.Color("250")
	cWhite      = lipgloss.Color("255")
	cHighlight  = lipgloss.Color("57")
	cField      = lipgloss.Color("63")

	styleNormalText = lipgloss.NewStyle().Foreground(cWhite)

	styleID = lipgloss.NewStyle().Foreground(cGold).Bold(true)

	// Reverse video keeps the highlight visible on monochrome terminals.
	styleSelected = lipgloss.NewStyle().
			Background(cHighlight).
			Foreground(cWhite).
			Reverse(true).
			Bold(true)

	styleAppHeader = lipgloss.NewStyle().
			Foreground(cWhite).
			Background(cPurple).
			Bold(true).
			Padding(0, 1)

	styleInstruction = lipgloss.NewStyle().
				Foreground(cLightGray).
				Italic(true)

	styleDetailHeaderBlock = lipgloss.NewStyle().
				Background(cHighlight).
				Foreground(cWhite).
				Bold(true).
				Padding(0, 1)

	styleDetailTitle = lipgloss.NewStyle().
				Foreground(cWhite).
				Bold(true)

	styleField = lipgloss.NewStyle().
			Foreground(cField).
			Bold(true).
			Width(8)

	styleVal = lipgloss.NewStyle().Foreground(cWhite)

	styleSectionHeader = lipgloss.NewStyle().
				Foreground(cGold).
				Bold(true)

	styleRuleGroup = lipgloss.NewStyle().
			Foreground(cCyan).
			Bold(true)

	styleRuleName = lipgloss.NewStyle().
			Foreground(cLightGray)

	styleCommand = lipgloss.NewStyle().
			Foreground(cNeonGreen)

	styleExecuting = lipgloss.NewStyle().
			Foreground(cCyan).
			Bold(true)

	styleErrorIndicator = lipgloss.NewStyle().
				Foreground(cRed).
				Bold(true)

	// Footer bar styles
	styleKeyPill = lipgloss.NewStyle().
			Background(cPurple).
			Foreground(cWhite).
			Bold(true)

	styleKeyDesc = lipgloss.NewStyle().
			Foreground(cBrightGray)

	styleFooterMuted = lipgloss.NewStyle().
				Foreground(cBrightGray)
)

// DescriptionRenderer returns the renderer the detail view uses for test
// descriptions in an output format. Unknown glamour styles and render failures
// fall back to plain word wrapping.
func DescriptionRenderer(format string, width int) func(string) string {
	fallback := func(input string) string {
		if width <= 0 {
			return input
		}
		return wordwrap.String(input, width)
	}

	style := strings.ToLower(strings.TrimSpace(format))
	if style == "" || style == "rich" || style == "dark" {
		style = "dark"
	}
	if style == "plain" || width <= 0 {
		return fallback
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.TrimSpace(out)
	}
}
