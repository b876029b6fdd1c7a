package main

import (
	"context"
	"fmt"
	"strings"

	"mitremenu/internal/catalog"
	"mitremenu/internal/config"
	"mitremenu/internal/debug"
	"mitremenu/internal/history"
	"mitremenu/internal/runner"
	"mitremenu/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	catalogPath  string
	shell        string
	outputFormat string
	debug        bool
	debugLog     string
	noHistory    bool
}

func newRootCmd(factory programFactory) *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "mitremenu",
		Short: "Run MITRE ATT&CK emulation tests from an interactive menu",
		Long: `mitremenu lists adversary-emulation tests, shows the detection rules each
one should trigger, and runs the selected test's command in your terminal.
Without a subcommand it starts the interactive menu.`,
		Version: Version,
		// Errors are printed once by execute.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initRuntime(cmd, flags)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), factory)
		},
	}
	cmd.SetVersionTemplate(`{{printf "mitremenu version %s\n" .Version}}`)

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.catalogPath, "catalog", "", "Path to a YAML test catalog (default: built-in catalog)")
	pf.StringVar(&flags.shell, "shell", "", `Interpreter and leading arguments for test commands, e.g. "pwsh -NoProfile -Command"`)
	pf.StringVar(&flags.outputFormat, "output-format", "", "Description style (rich, light, plain)")
	pf.BoolVar(&flags.debug, "debug", false, "Write a debug log")
	pf.StringVar(&flags.debugLog, "debug-log", "", "Debug log path (default ~/.mitremenu/debug.log)")
	pf.BoolVar(&flags.noHistory, "no-history", false, "Do not record executions")

	cmd.AddCommand(
		newListCmd(),
		newShowCmd(),
		newRunCmd(),
		newHistoryCmd(),
		newEventsCmd(),
		newHuntCmd(),
		newVersionCmd(),
	)
	return cmd
}

// initRuntime loads configuration, layers explicitly set flags on top and
// starts the debug log.
func initRuntime(cmd *cobra.Command, flags *rootFlags) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("initialize config: %w", err)
	}

	overrides := map[string]any{}
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("catalog") {
		overrides[config.KeyCatalogPath] = strings.TrimSpace(flags.catalogPath)
	}
	if changed("shell") {
		fields := strings.Fields(flags.shell)
		if len(fields) == 0 {
			return fmt.Errorf("--shell must name an interpreter")
		}
		overrides[config.KeyShellProgram] = fields[0]
		overrides[config.KeyShellArgs] = fields[1:]
	}
	if changed("output-format") {
		overrides[config.KeyOutputFormat] = strings.TrimSpace(flags.outputFormat)
	}
	if changed("debug") {
		overrides[config.KeyDebug] = flags.debug
	}
	if changed("debug-log") {
		overrides[config.KeyDebugLogPath] = flags.debugLog
	}
	if changed("no-history") && flags.noHistory {
		overrides[config.KeyHistoryEnabled] = false
	}
	if err := config.ApplyOverrides(overrides); err != nil {
		return fmt.Errorf("apply flags: %w", err)
	}

	if err := debug.Init(config.GetBool(config.KeyDebug), config.GetString(config.KeyDebugLogPath)); err != nil {
		return fmt.Errorf("initialize debug log: %w", err)
	}
	debug.Logf("catalog=%q shell=%q %q output=%q history=%v",
		config.GetString(config.KeyCatalogPath),
		config.GetString(config.KeyShellProgram),
		config.GetStringSlice(config.KeyShellArgs),
		config.GetString(config.KeyOutputFormat),
		config.GetBool(config.KeyHistoryEnabled))
	return nil
}

func loadCatalog() (catalog.Catalog, error) {
	cat, err := catalog.Load(config.GetString(config.KeyCatalogPath))
	if err != nil {
		return catalog.Catalog{}, err
	}
	debug.Logf("loaded %d tests from %s", cat.Len(), cat.Source())
	return cat, nil
}

func newShell() *runner.Shell {
	return runner.NewShell(config.GetString(config.KeyShellProgram), config.GetStringSlice(config.KeyShellArgs)...)
}

// openHistory returns nil when history is disabled or cannot be opened; a
// broken history store never blocks running tests.
func openHistory(ctx context.Context) *history.Store {
	if !config.GetBool(config.KeyHistoryEnabled) {
		return nil
	}
	store, err := history.Open(ctx, config.GetString(config.KeyHistoryPath))
	if err != nil {
		debug.Logf("history disabled: %v", err)
		return nil
	}
	return store
}

type programRunner interface {
	Run() (tea.Model, error)
}

type programFactory func(*ui.App) programRunner

func defaultProgramFactory(app *ui.App) programRunner {
	return tea.NewProgram(app, tea.WithAltScreen())
}

func runTUI(ctx context.Context, factory programFactory) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	cfg := ui.Config{
		Catalog:      cat,
		Runner:       newShell(),
		OutputFormat: config.GetString(config.KeyOutputFormat),
		Version:      Version,
	}
	if store := openHistory(ctx); store != nil {
		defer func() {
			_ = store.Close()
		}()
		cfg.History = store
	}

	return runProgram(cfg, ui.NewApp, factory)
}

func runProgram(cfg ui.Config, builder func(ui.Config) (*ui.App, error), factory programFactory) error {
	app, err := builder(cfg)
	if err != nil {
		return fmt.Errorf("initialize UI: %w", err)
	}
	if factory == nil {
		return fmt.Errorf("program factory is nil")
	}
	prog := factory(app)
	if prog == nil {
		return fmt.Errorf("program is nil")
	}
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run UI: %w", err)
	}
	return nil
}
