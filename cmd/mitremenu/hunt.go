package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mitremenu/internal/fortiedr"

	"github.com/spf13/cobra"
)

type huntFlags struct {
	category string
	period   string
	from     string
	limit    int
	output   string
}

func newHuntCmd() *cobra.Command {
	flags := &huntFlags{}
	cmd := &cobra.Command{
		Use:   "hunt",
		Short: "Search FortiEDR threat-hunting activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(flags.output); err != nil {
				return err
			}
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			client, err := newFortiEDRClient()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printRequest(out, filter.Params())
			events, err := client.ThreatHunt(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if strings.EqualFold(flags.output, outputJSON) {
				raw := make([]json.RawMessage, 0, len(events))
				for _, e := range events {
					raw = append(raw, e.Raw)
				}
				return printJSON(out, raw)
			}
			rows := fortiedr.HuntRows(events, time.Local)
			cells := make([][]string, 0, len(rows))
			for _, r := range rows {
				cells = append(cells, r.Cells())
			}
			fmt.Fprintln(out, renderTable(fortiedr.HuntHeaders, cells))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.category, "category", "", "Category ("+strings.Join(fortiedr.HuntCategories, ", ")+")")
	f.StringVar(&flags.period, "period", "", "Time period ("+strings.Join(fortiedr.HuntPeriods, ", ")+")")
	f.StringVar(&flags.from, "from", "", "Start date for --period custom (YYYY-MM-DD)")
	f.IntVar(&flags.limit, "limit", 0, "Maximum records per page (0 for the console default)")
	f.StringVarP(&flags.output, "output", "o", outputTable, "Output format (table, json)")
	return cmd
}

func (f *huntFlags) filter() (fortiedr.HuntFilter, error) {
	filter := fortiedr.HuntFilter{
		ItemsPerPage: f.limit,
		Category:     f.category,
		Period:       f.period,
	}
	if f.from != "" {
		if !strings.EqualFold(f.period, "custom") {
			return fortiedr.HuntFilter{}, fmt.Errorf("--from needs --period custom")
		}
		from, err := time.ParseInLocation(dateLayout, f.from, time.Local)
		if err != nil {
			return fortiedr.HuntFilter{}, fmt.Errorf("parse --from: %w", err)
		}
		filter.From = from
	}
	return filter, filter.Validate()
}
