package ui

import (
	"strings"

	"mitremenu/internal/catalog"

	"github.com/charmbracelet/x/ansi"
)

// RenderDetail renders a test the way the detail view shows it, without the
// navigation instruction or footer. width <= 0 disables wrapping.
func RenderDetail(t catalog.TestCase, width int, describe func(string) string) string {
	body, command := detailSections(t, width, describe)
	return strings.Join(append(body, command...), "\n")
}

// detailSections splits the detail view into the scrollable body (header,
// description, rules) and the Command section, which always stays on screen.
func detailSections(t catalog.TestCase, width int, describe func(string) string) (body, command []string) {
	body = []string{
		styleDetailHeaderBlock.Render(t.ID) + " " + styleDetailTitle.Render(t.Title),
		"",
		styleField.Render("Test:") + styleVal.Render(t.TestName),
	}

	if desc := strings.TrimSpace(t.Description); desc != "" {
		if describe == nil {
			describe = DescriptionRenderer("plain", width-detailIndent)
		}
		body = append(body, "", styleSectionHeader.Render("Description"))
		body = append(body, indentLines(describe(desc), detailIndent)...)
	}

	// The header is emitted even when the test has no rules.
	body = append(body, "", styleSectionHeader.Render("Triggered Rules"))
	body = append(body, ruleLines(t)...)

	command = []string{"", styleSectionHeader.Render("Command")}
	return body, append(command, commandLines(t.Command, width)...)
}

// commandLines wraps the literal command so none of it is truncated.
func commandLines(cmd string, width int) []string {
	if limit := width - detailIndent; width > 0 && limit > 0 {
		cmd = ansi.Wrap(cmd, limit, "")
	}
	var lines []string
	for _, line := range strings.Split(cmd, "\n") {
		lines = append(lines, strings.Repeat(" ", detailIndent)+styleCommand.Render(line))
	}
	return lines
}

// ruleLines lays detection rules out in catalog order: group headers at one
// indent, the rule names under them at the next.
func ruleLines(t catalog.TestCase) []string {
	var lines []string
	for _, rule := range t.RuleLines() {
		text := strings.TrimSpace(rule.Text)
		if rule.Header {
			lines = append(lines, strings.Repeat(" ", detailIndent)+styleRuleGroup.Render(text))
			continue
		}
		lines = append(lines, strings.Repeat(" ", ruleNameIndent)+styleRuleName.Render(text))
	}
	return lines
}
