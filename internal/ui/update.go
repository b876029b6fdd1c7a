package ui

import (
	"context"
	"fmt"
	"time"

	"mitremenu/internal/catalog"
	"mitremenu/internal/debug"
	"mitremenu/internal/history"
	"mitremenu/internal/menu"
	"mitremenu/internal/runner"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case executionFinishedMsg:
		return m, m.handleExecutionFinished(msg)

	case statusExpiredMsg:
		if msg.gen == m.statusGen {
			m.status = ""
			m.statusFailed = false
		}
		return m, nil
	}
	return m, nil
}

func (m *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Interrupt) {
		debug.Log("interrupt received, quitting")
		m.state.View = menu.Terminated
		m.state.Active = nil
		return m, tea.Quit
	}
	if m.state.View == menu.TestDetail {
		switch {
		case key.Matches(msg, m.keys.Copy):
			return m, m.copyActiveCommand()
		case key.Matches(msg, m.keys.Up, m.keys.Down, m.keys.PageUp, m.keys.PageDown):
			// The state machine ignores these in the detail view; they only
			// scroll it.
			m.syncDetailViewport()
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
	}

	logical := m.keys.Resolve(msg)
	next, effect := menu.Step(m.state, logical, m.catalog)
	if effect.Kind != menu.EffectNone {
		debug.Logf("key %s: %s -> %s (selected %d)", logical, m.state.View, next.View, next.Selected)
	}
	entering := next.View == menu.TestDetail && m.state.View != menu.TestDetail
	m.state = next
	if entering {
		m.detail.GotoTop()
		m.syncDetailViewport()
	}

	switch effect.Kind {
	case menu.EffectQuit:
		return m, tea.Quit
	case menu.EffectExecute:
		return m, m.execute(effect.Command)
	default:
		return m, nil
	}
}

// execute hands the terminal to the command and resumes the session when it
// exits. tea.ExecProcess restores the terminal even if the process never starts.
func (m *App) execute(commandLine string) tea.Cmd {
	test := *m.state.Active
	started := m.now()
	debug.Logf("executing %s: %s", test.ID, commandLine)

	cmd := m.runner.Command(commandLine)
	return tea.ExecProcess(cmd, m.executionCallback(test, started))
}

// executionCallback turns the error tea.ExecProcess reports for test into the
// message that returns the console to the menu.
func (m *App) executionCallback(test catalog.TestCase, started time.Time) tea.ExecCallback {
	return func(err error) tea.Msg {
		return executionFinishedMsg{
			test:     test,
			status:   runner.StatusFromError(err),
			started:  started,
			finished: m.now(),
		}
	}
}

func (m *App) handleExecutionFinished(msg executionFinishedMsg) tea.Cmd {
	m.state = menu.Finish(m.state)
	debug.Logf("finished %s: %s", msg.test.ID, msg.status)

	if m.history != nil {
		entry := history.Entry{
			TestID:    msg.test.ID,
			Title:     msg.test.Title,
			Command:   msg.test.Command,
			ExitCode:  msg.status.Code,
			StartedAt: msg.started,
			Duration:  msg.finished.Sub(msg.started),
		}
		if msg.status.Err != nil {
			entry.Error = msg.status.Err.Error()
		}
		if _, err := m.history.Record(context.Background(), entry); err != nil {
			debug.Logf("history: %v", err)
		}
	}

	switch {
	case msg.status.Success():
		return m.setStatus(fmt.Sprintf("%s finished (exit 0)", msg.test.ID), false)
	case !msg.status.Spawned():
		return m.setStatus(fmt.Sprintf("%s failed to start", msg.test.ID), true)
	default:
		return m.setStatus(fmt.Sprintf("%s exited with code %d", msg.test.ID, msg.status.Code), true)
	}
}

func (m *App) copyActiveCommand() tea.Cmd {
	if m.state.Active == nil {
		return nil
	}
	if err := m.clipboard(m.state.Active.Command); err != nil {
		debug.Logf("clipboard: %v", err)
		return m.setStatus("Copy failed", true)
	}
	return m.setStatus("Copied command", false)
}
