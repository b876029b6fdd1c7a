package main

import (
	"fmt"

	"mitremenu/internal/config"
	appErrors "mitremenu/internal/errors"
	"mitremenu/internal/ui"

	"github.com/spf13/cobra"
)

const showWidth = 80

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a test's details and detection rules",
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
			describe := ui.DescriptionRenderer(config.GetString(config.KeyOutputFormat), showWidth-2)
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderDetail(test, showWidth, describe))
			return nil
		},
	}
}
