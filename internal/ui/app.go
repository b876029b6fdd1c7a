package ui

import (
	"context"
	"strings"
	"time"

	"mitremenu/internal/catalog"
	appErrors "mitremenu/internal/errors"
	"mitremenu/internal/history"
	"mitremenu/internal/menu"
	"mitremenu/internal/runner"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Recorder stores finished executions.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (int64, error)
}

// Config configures the UI application.
type Config struct {
	Catalog      catalog.Catalog
	Runner       runner.Runner
	History      Recorder // optional
	OutputFormat string
	Version      string

	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
	// Now defaults to time.Now.
	Now func() time.Time
}

// App implements the Bubble Tea model for the console. All navigation is
// delegated to menu.Step; App only translates input and carries out effects.
type App struct {
	catalog catalog.Catalog
	runner  runner.Runner
	history Recorder
	keys    KeyMap
	state   menu.State

	// detail scrolls the part of the detail view above the Command section.
	detail viewport.Model

	width        int
	height       int
	outputFormat string
	describe     func(string) string
	version      string

	status       string
	statusFailed bool
	statusGen    int

	clipboard func(string) error
	now       func() time.Time
}

// NewApp creates a new UI app instance. The catalog must hold at least one test.
func NewApp(cfg Config) (*App, error) {
	if cfg.Catalog.Len() == 0 {
		return nil, appErrors.New(appErrors.CodeConfigurationError, "catalog has no tests", nil)
	}
	if cfg.Runner == nil {
		return nil, appErrors.New(appErrors.CodeConfigurationError, "no command runner configured", nil)
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = clipboard.WriteAll
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	keys := DefaultKeyMap()
	detail := viewport.New(0, 0)
	detail.KeyMap = keys.detailScrollKeys()

	m := &App{
		catalog:      cfg.Catalog,
		runner:       cfg.Runner,
		history:      cfg.History,
		keys:         keys,
		detail:       detail,
		state:        menu.New(),
		outputFormat: cfg.OutputFormat,
		version:      cfg.Version,
		clipboard:    cfg.Clipboard,
		now:          cfg.Now,
	}
	m.describe = DescriptionRenderer(m.outputFormat, 0)
	return m, nil
}

// Init implements tea.Model.
func (m *App) Init() tea.Cmd {
	return nil
}

// State returns the current navigation state.
func (m *App) State() menu.State {
	return m.state
}

func (m *App) setStatus(text string, failed bool) tea.Cmd {
	m.status = text
	m.statusFailed = failed
	m.statusGen++
	return scheduleStatusExpiry(m.statusGen)
}

func (m *App) resize(width, height int) {
	m.width = width
	m.height = height
	m.describe = DescriptionRenderer(m.outputFormat, width-detailIndent)
	m.syncDetailViewport()
}

// syncDetailViewport sizes the detail viewport to the scrollable region of the
// current frame, keeping its offset within the content.
func (m *App) syncDetailViewport() {
	if m.state.Active == nil {
		m.detail.SetContent("")
		m.detail.GotoTop()
		return
	}
	scroll, _, visible := detailLayout(*m.state.Active, m.width, bodyHeightFor(m.height), m.describe)
	m.detail.Width = m.width
	m.detail.Height = visible
	m.detail.SetContent(strings.Join(scroll, "\n"))
	m.detail.SetYOffset(m.detail.YOffset)
}
