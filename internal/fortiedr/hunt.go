package fortiedr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	appErrors "mitremenu/internal/errors"
)

// Category and time period names accepted by threat-hunting searches.
var (
	HuntCategories = []string{"Process", "File", "Registry", "Network", "Event Log", "All"}
	HuntPeriods    = []string{"lastHour", "last12hours", "last24hours", "last7days", "last30days", "custom"}
)

// HuntFilter narrows ThreatHunt. Zero values are omitted from the request.
type HuntFilter struct {
	ItemsPerPage int
	Category     string
	// Period is one of HuntPeriods. "custom" requires From.
	Period string
	From   time.Time
}

// Validate checks category and period names.
func (f HuntFilter) Validate() error {
	if f.Category != "" && !containsFold(HuntCategories, f.Category) {
		return appErrors.New(appErrors.CodeConfigurationError,
			fmt.Sprintf("unknown category %q (want one of %s)", f.Category, strings.Join(HuntCategories, ", ")), nil)
	}
	if f.Period != "" && !containsFold(HuntPeriods, f.Period) {
		return appErrors.New(appErrors.CodeConfigurationError,
			fmt.Sprintf("unknown time period %q (want one of %s)", f.Period, strings.Join(HuntPeriods, ", ")), nil)
	}
	if strings.EqualFold(f.Period, "custom") && f.From.IsZero() {
		return appErrors.New(appErrors.CodeConfigurationError, "custom time period needs a start date", nil)
	}
	if f.ItemsPerPage < 0 {
		return appErrors.New(appErrors.CodeConfigurationError, "items per page must not be negative", nil)
	}
	return nil
}

// Params returns the search body. A custom period is sent as "time": "custom"
// plus "fromTime" at the start of the From day.
func (f HuntFilter) Params() map[string]any {
	params := map[string]any{}
	if f.ItemsPerPage > 0 {
		params["itemsPerPage"] = f.ItemsPerPage
	}
	if f.Category != "" {
		params["category"] = f.Category
	}
	switch {
	case strings.EqualFold(f.Period, "custom") && !f.From.IsZero():
		day := time.Date(f.From.Year(), f.From.Month(), f.From.Day(), 0, 0, 0, 0, f.From.Location())
		params["fromTime"] = day.Format(TimeLayout)
		params["time"] = "custom"
	case f.Period != "" && !strings.EqualFold(f.Period, "custom"):
		params["time"] = f.Period
	}
	return params
}

// HuntEvent is one activity record returned by a threat-hunting search.
type HuntEvent struct {
	// Time is milliseconds since the Unix epoch.
	Time   int64  `json:"Time"`
	Type   string `json:"Type"`
	Device struct {
		Name string `json:"Name"`
	} `json:"Device"`
	Source struct {
		Process *struct {
			Name        string `json:"Name"`
			CommandLine string `json:"CommandLine"`
			User        *struct {
				Username string `json:"Username"`
			} `json:"User"`
		} `json:"Process"`
	} `json:"Source"`
	Target struct {
		File *struct {
			Path string `json:"Path"`
		} `json:"File"`
	} `json:"Target"`

	// Raw is the record exactly as the console returned it.
	Raw json.RawMessage `json:"-"`
}

// HuntRow is a HuntEvent flattened for tabular output.
type HuntRow struct {
	Index       int
	Time        string
	Type        string
	Device      string
	ProcessName string
	CommandLine string
	TargetPath  string
	User        string
}

// HuntHeaders are the column titles matching HuntRow.Cells.
var HuntHeaders = []string{"#", "Time", "Type", "Device Name", "Process Name", "Command Line", "Target Path", "User"}

// Cells returns the row in HuntHeaders order.
func (r HuntRow) Cells() []string {
	return []string{
		strconv.Itoa(r.Index), r.Time, r.Type, r.Device, r.ProcessName, r.CommandLine, r.TargetPath, r.User,
	}
}

// HuntRows flattens hunt events, numbering them from 1 and formatting times in
// loc. Missing process, user or target details read N/A.
func HuntRows(events []HuntEvent, loc *time.Location) []HuntRow {
	if loc == nil {
		loc = time.Local
	}
	rows := make([]HuntRow, 0, len(events))
	for i, e := range events {
		row := HuntRow{
			Index:       i + 1,
			Time:        time.UnixMilli(e.Time).In(loc).Format(TimeLayout),
			Type:        e.Type,
			Device:      e.Device.Name,
			ProcessName: "N/A",
			CommandLine: "N/A",
			TargetPath:  "N/A",
			User:        "N/A",
		}
		if p := e.Source.Process; p != nil {
			row.ProcessName = orNA(p.Name)
			row.CommandLine = orNA(p.CommandLine)
			if p.User != nil {
				row.User = orNA(p.User.Username)
			}
		}
		if f := e.Target.File; f != nil {
			row.TargetPath = orNA(f.Path)
		}
		rows = append(rows, row)
	}
	return rows
}

// ThreatHunt runs a threat-hunting search.
func (c *Client) ThreatHunt(ctx context.Context, f HuntFilter) ([]HuntEvent, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	data, err := c.do(ctx, http.MethodPost, "/threat-hunting/search", nil, f.Params())
	if err != nil {
		return nil, err
	}
	items, err := decodeItems(data)
	if err != nil {
		return nil, err
	}

	events := make([]HuntEvent, 0, len(items))
	for _, item := range items {
		var e HuntEvent
		if err := json.Unmarshal(item, &e); err != nil {
			return nil, appErrors.New(appErrors.CodeAPIFailed, fmt.Sprintf("decode hunt event: %v", err), err)
		}
		e.Raw = item
		events = append(events, e)
	}
	return events, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
