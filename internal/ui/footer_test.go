package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestKeyPill(t *testing.T) {
	pill := keyPill("↑↓", "Navigate")

	t.Run("ContainsKey", func(t *testing.T) {
		if !strings.Contains(pill, "↑↓") {
			t.Error("expected pill to contain key")
		}
	})

	t.Run("ContainsDesc", func(t *testing.T) {
		if !strings.Contains(pill, "Navigate") {
			t.Error("expected pill to contain description")
		}
	})
}

func TestRenderFooter(t *testing.T) {
	t.Run("DetailHints", func(t *testing.T) {
		footer := stripANSI(renderFooter(detailFooterHints, Frame{Width: 100}))
		for _, want := range []string{"Execute", "Back", "Copy"} {
			if !strings.Contains(footer, want) {
				t.Errorf("expected footer to contain %q", want)
			}
		}
	})

	t.Run("StatusRightAligned", func(t *testing.T) {
		footer := renderFooter(menuFooterHints, Frame{Width: 100, Status: "T1055 finished (exit 0)"})
		if lipgloss.Width(footer) != 100 {
			t.Fatalf("expected footer to span the width, got %d", lipgloss.Width(footer))
		}
		if !strings.HasSuffix(stripANSI(footer), "T1055 finished (exit 0)") {
			t.Fatalf("expected status at the right edge, got %q", stripANSI(footer))
		}
	})

	t.Run("StatusOnly", func(t *testing.T) {
		footer := stripANSI(renderFooter(nil, Frame{Status: "Copied command"}))
		if footer != "Copied command" {
			t.Fatalf("unexpected footer %q", footer)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if footer := renderFooter(nil, Frame{Width: 80}); footer != "" {
			t.Fatalf("expected empty footer, got %q", footer)
		}
	})
}

func TestTrimHintsToFit(t *testing.T) {
	full := lipgloss.Width(joinHints(menuFooterHints))

	if got := trimHintsToFit(menuFooterHints, full); len(got) != len(menuFooterHints) {
		t.Fatalf("expected all hints to fit, got %d", len(got))
	}
	got := trimHintsToFit(menuFooterHints, full-1)
	if len(got) != len(menuFooterHints)-1 || got[0].desc != "Navigate" {
		t.Fatalf("expected the last hint dropped first, got %+v", got)
	}
	if got := trimHintsToFit(menuFooterHints, 0); len(got) != 0 {
		t.Fatalf("expected no hints to fit, got %+v", got)
	}
}
