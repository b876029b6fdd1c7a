package ui

import (
	"fmt"
	"strings"

	"mitremenu/internal/catalog"
	"mitremenu/internal/menu"
)

const (
	menuTitle         = "MITRE ATT&CK Test Menu"
	menuInstruction   = "Use ↑/↓ to navigate, ENTER to view details, q to quit."
	detailInstruction = "Press ENTER to execute or BACKSPACE to return."
	selectedMarker    = "▸"

	menuHeaderHeight = 3 // title, instruction, blank
	footerHeight     = 2 // blank, hints
)

// Frame is the terminal geometry and chrome a render is drawn into.
type Frame struct {
	// Width and Height clamp the output; zero means unknown and disables
	// clamping in that dimension.
	Width  int
	Height int

	// Status is shown right-aligned in the footer.
	Status       string
	StatusFailed bool

	// Describe renders test descriptions. Nil means plain word wrapping.
	Describe func(string) string

	// DetailOffset is how many lines the detail view is scrolled down.
	DetailOffset int
}

// Render draws the screen for s. It is a pure function of its inputs and
// never fails: content that does not fit is truncated.
func Render(s menu.State, cat catalog.Catalog, f Frame) string {
	bodyHeight := bodyHeightFor(f.Height)

	var (
		body  []string
		hints []footerHint
	)
	switch s.View {
	case menu.MenuList:
		body = menuLines(s, cat, bodyHeight)
		hints = menuFooterHints
	case menu.TestDetail:
		hints = detailFooterHints
		if s.Active != nil {
			var scrolled bool
			body, scrolled = detailFrameLines(*s.Active, f, bodyHeight)
			if scrolled {
				hints = append(append([]footerHint(nil), hints...), detailScrollHint)
			}
		}
	case menu.Executing:
		body = executingLines(s)
	default:
		return ""
	}

	lines := clampLines(body, f.Width, bodyHeight)
	if footer := renderFooter(hints, f); footer != "" {
		lines = append(lines, "", footer)
	}
	return strings.Join(clampLines(lines, f.Width, f.Height), "\n")
}

// bodyHeightFor is the number of lines above the footer; 0 means unclamped.
func bodyHeightFor(height int) int {
	if height <= 0 {
		return 0
	}
	return max(height-footerHeight, 1)
}

// detailLayout splits the detail view into the scrollable part and the block
// pinned to the bottom (Command section and instruction). visible is how many
// scrollable lines fit above the pinned block.
func detailLayout(t catalog.TestCase, width, height int, describe func(string) string) (scroll, pinned []string, visible int) {
	scroll, pinned = detailSections(t, width, describe)
	pinned = append(pinned, "", styleInstruction.Render(detailInstruction))
	if height <= 0 {
		return scroll, pinned, len(scroll)
	}
	return scroll, pinned, max(height-len(pinned), 1)
}

// detailFrameLines returns the detail body for a frame and whether part of the
// scrollable section is hidden.
func detailFrameLines(t catalog.TestCase, f Frame, height int) ([]string, bool) {
	scroll, pinned, visible := detailLayout(t, f.Width, height, f.Describe)
	start := min(max(f.DetailOffset, 0), max(len(scroll)-visible, 0))
	end := min(start+visible, len(scroll))

	lines := make([]string, 0, end-start+len(pinned))
	lines = append(lines, scroll[start:end]...)
	lines = append(lines, pinned...)
	return lines, start > 0 || end < len(scroll)
}

func menuLines(s menu.State, cat catalog.Catalog, height int) []string {
	n := cat.Len()
	lines := []string{
		styleAppHeader.Render(menuTitle) + " " + styleFooterMuted.Render(fmt.Sprintf("%d/%d", s.Selected+1, n)),
		styleInstruction.Render(menuInstruction),
		"",
	}

	tests := cat.Tests()
	ids := make([]string, len(tests))
	for i, t := range tests {
		ids[i] = t.ID
	}
	idWidth := maxIDWidth(ids)

	visible := n
	if height > 0 {
		visible = max(height-menuHeaderHeight, 1)
	}
	start, end := scrollWindow(s.Selected, n, visible)
	for i := start; i < end; i++ {
		t := tests[i]
		id := fmt.Sprintf("%-*s", idWidth, t.ID)
		if i == s.Selected {
			lines = append(lines, styleSelected.Render(selectedMarker+" "+id+"  "+t.Title))
			continue
		}
		lines = append(lines, "  "+styleID.Render(id)+"  "+styleNormalText.Render(t.Title))
	}
	return lines
}

// scrollWindow returns the [start, end) rows to show so that selected stays
// visible, keeping it roughly centred once the list scrolls.
func scrollWindow(selected, n, visible int) (int, int) {
	if visible >= n {
		return 0, n
	}
	start := selected - visible/2
	start = min(start, n-visible)
	start = max(start, 0)
	return start, start + visible
}

func executingLines(s menu.State) []string {
	label := "test"
	if s.Active != nil {
		label = s.Active.ID + " " + s.Active.Title
	}
	return []string{
		styleExecuting.Render(fmt.Sprintf("Executing %s...", label)),
	}
}
