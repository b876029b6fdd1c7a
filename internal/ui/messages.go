package ui

import (
	"time"

	"mitremenu/internal/catalog"
	"mitremenu/internal/runner"

	tea "github.com/charmbracelet/bubbletea"
)

const statusTimeout = 5 * time.Second

// executionFinishedMsg is delivered once the terminal is handed back after an
// emulation command, whether or not it started.
type executionFinishedMsg struct {
	test     catalog.TestCase
	status   runner.ExitStatus
	started  time.Time
	finished time.Time
}

// statusExpiredMsg clears the footer status set by generation gen.
type statusExpiredMsg struct {
	gen int
}

func scheduleStatusExpiry(gen int) tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return statusExpiredMsg{gen: gen}
	})
}
