package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tests in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, cat.Len())
			for _, t := range cat.Tests() {
				rows = append(rows, []string{t.ID, t.Title, t.TestName, strconv.Itoa(len(t.DetectionRules))})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"ID", "Title", "Test", "Rules"}, rows))
			fmt.Fprintf(out, "%d tests from %s\n", cat.Len(), cat.Source())
			return nil
		},
	}
}
