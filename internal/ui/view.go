package ui

import "mitremenu/internal/menu"

// View implements tea.Model.
func (m *App) View() string {
	if m.state.View == menu.Terminated {
		return ""
	}
	status := m.status
	if status == "" && m.version != "" {
		status = "mitremenu " + m.version
	}
	return Render(m.state, m.catalog, Frame{
		Width:        m.width,
		Height:       m.height,
		Status:       status,
		StatusFailed: m.statusFailed,
		Describe:     m.describe,
		DetailOffset: m.detail.YOffset,
	})
}
