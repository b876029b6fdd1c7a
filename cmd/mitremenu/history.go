package main

import (
	"fmt"
	"strconv"

	"mitremenu/internal/config"
	"mitremenu/internal/history"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded test executions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := history.Open(ctx, config.GetString(config.KeyHistoryPath))
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			entries, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No executions recorded.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				result := strconv.Itoa(e.ExitCode)
				if e.ExitCode < 0 {
					result = "not started"
				}
				rows = append(rows, []string{
					e.StartedAt.Local().Format("2006-01-02 15:04:05"),
					e.TestID,
					result,
					e.Duration.String(),
					e.Command,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Started", "Test", "Exit", "Duration", "Command"}, rows))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum executions to show (0 for all)")
	return cmd
}
