package main

import (
	"fmt"
	"time"

	"mitremenu/internal/debug"
	appErrors "mitremenu/internal/errors"
	"mitremenu/internal/history"
	"mitremenu/internal/runner"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <id>",
		Short: "Execute a test without the menu and exit with its status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}
			test, _, ok := cat.Find(args[0])
			if !ok {
				return appErrors.New(appErrors.CodeNotFound, fmt.Sprintf("no test %q in %s", args[0], cat.Source()), nil)
			}

			sh := newShell()
			sh.Stdin = cmd.InOrStdin()
			sh.Stdout = cmd.OutOrStdout()
			sh.Stderr = cmd.ErrOrStderr()

			ctx := cmd.Context()
			fmt.Fprintf(cmd.ErrOrStderr(), "Executing %s %s...\n", test.ID, test.Title)
			debug.Logf("run %s: %q", test.ID, sh.Argv(test.Command))
			started := time.Now()
			status := sh.Run(ctx, test.Command)
			finished := time.Now()
			debug.Logf("run %s: %s", test.ID, status)

			if store := openHistory(ctx); store != nil {
				entry := history.Entry{
					TestID:    test.ID,
					Title:     test.Title,
					Command:   test.Command,
					ExitCode:  status.Code,
					StartedAt: started,
					Duration:  finished.Sub(started),
				}
				if status.Err != nil {
					entry.Error = status.Err.Error()
				}
				if _, err := store.Record(ctx, entry); err != nil {
					debug.Logf("history: %v", err)
				}
				_ = store.Close()
			}

			return exitForStatus(status)
		},
	}
}

// exitForStatus mirrors the command's exit code. Spawn failures and signal
// deaths have no usable code and exit 1 with the error printed.
func exitForStatus(status runner.ExitStatus) error {
	switch {
	case status.Success():
		return nil
	case !status.Spawned():
		return status.Err
	case status.Code > 0:
		return exitCodeError{code: status.Code}
	default:
		return status.Err
	}
}
