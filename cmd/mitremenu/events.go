package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mitremenu/internal/fortiedr"

	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

type eventsFlags struct {
	days   int
	hours  int
	from   string
	to     string
	action string
	limit  int
	output string
}

func newEventsCmd() *cobra.Command {
	flags := &eventsFlags{}
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List FortiEDR security events",
		Long: `List security events from the FortiEDR console. Pick at most one time window:
--days, --hours, or --from/--to (whole days). Without one, all events are fetched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(flags.output); err != nil {
				return err
			}
			filter, err := flags.filter(time.Now())
			if err != nil {
				return err
			}
			client, err := newFortiEDRClient()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if filter.FirstSeenFrom.IsZero() {
				fmt.Fprintln(out, "No date filter applied. Fetching all available events.")
			}
			printRequest(out, filter.Params())
			events, err := client.ListEvents(cmd.Context(), filter)
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
			rows := fortiedr.EventRows(events)
			cells := make([][]string, 0, len(rows))
			for _, r := range rows {
				cells = append(cells, r.Cells())
			}
			fmt.Fprintln(out, renderTable(fortiedr.EventHeaders, cells))
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&flags.days, "days", 0, "Events first seen in the last N days")
	f.IntVar(&flags.hours, "hours", 0, "Events first seen in the last N hours")
	f.StringVar(&flags.from, "from", "", "Start date (YYYY-MM-DD)")
	f.StringVar(&flags.to, "to", "", "End date (YYYY-MM-DD)")
	f.StringVar(&flags.action, "action", "", "Action filter ("+strings.Join(fortiedr.EventActions, ", ")+")")
	f.IntVar(&flags.limit, "limit", 0, "Maximum events per page (0 for the console default)")
	f.StringVarP(&flags.output, "output", "o", outputTable, "Output format (table, json)")
	return cmd
}

func (f *eventsFlags) filter(now time.Time) (fortiedr.EventFilter, error) {
	windows := 0
	for _, set := range []bool{f.days > 0, f.hours > 0, f.from != "" || f.to != ""} {
		if set {
			windows++
		}
	}
	if windows > 1 {
		return fortiedr.EventFilter{}, fmt.Errorf("use only one of --days, --hours or --from/--to")
	}
	if f.days < 0 || f.hours < 0 {
		return fortiedr.EventFilter{}, fmt.Errorf("--days and --hours must be positive")
	}

	var filter fortiedr.EventFilter
	switch {
	case f.days > 0:
		filter = fortiedr.LastDuration(now, time.Duration(f.days)*24*time.Hour)
	case f.hours > 0:
		filter = fortiedr.LastDuration(now, time.Duration(f.hours)*time.Hour)
	case f.from != "" || f.to != "":
		if f.from == "" || f.to == "" {
			return fortiedr.EventFilter{}, fmt.Errorf("--from and --to must be used together")
		}
		start, err := time.ParseInLocation(dateLayout, f.from, now.Location())
		if err != nil {
			return fortiedr.EventFilter{}, fmt.Errorf("parse --from: %w", err)
		}
		end, err := time.ParseInLocation(dateLayout, f.to, now.Location())
		if err != nil {
			return fortiedr.EventFilter{}, fmt.Errorf("parse --to: %w", err)
		}
		filter = fortiedr.DateRange(start, end)
	}
	filter.Action = f.action
	filter.ItemsPerPage = f.limit
	return filter, filter.Validate()
}
