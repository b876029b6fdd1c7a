package fortiedr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	appErrors "mitremenu/internal/errors"
)

// TimeLayout is the console's timestamp format for event filters.
const TimeLayout = "2006-01-02 15:04:05"

// EventActions are the action names the console filters on.
var EventActions = []string{"Block", "SimulationBlock", "Log"}

// EventFilter narrows ListEvents. Zero values are omitted from the request.
type EventFilter struct {
	FirstSeenFrom time.Time
	FirstSeenTo   time.Time
	Action        string
	ItemsPerPage  int
}

// LastDuration filters to events first seen within d of now.
func LastDuration(now time.Time, d time.Duration) EventFilter {
	return EventFilter{FirstSeenFrom: now.Add(-d), FirstSeenTo: now}
}

// DateRange filters to whole days from start through end.
func DateRange(start, end time.Time) EventFilter {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	to := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, end.Location())
	return EventFilter{FirstSeenFrom: from, FirstSeenTo: to}
}

// Validate checks the action name and date range.
func (f EventFilter) Validate() error {
	if f.Action != "" && !containsFold(EventActions, f.Action) {
		return appErrors.New(appErrors.CodeConfigurationError,
			fmt.Sprintf("unknown action %q (want one of %s)", f.Action, strings.Join(EventActions, ", ")), nil)
	}
	if f.ItemsPerPage < 0 {
		return appErrors.New(appErrors.CodeConfigurationError, "items per page must not be negative", nil)
	}
	if !f.FirstSeenFrom.IsZero() && !f.FirstSeenTo.IsZero() && f.FirstSeenTo.Before(f.FirstSeenFrom) {
		return appErrors.New(appErrors.CodeConfigurationError, "date range ends before it starts", nil)
	}
	return nil
}

// Params returns the request parameters. The date range is only sent when
// both ends are set.
func (f EventFilter) Params() map[string]string {
	params := map[string]string{}
	if !f.FirstSeenFrom.IsZero() && !f.FirstSeenTo.IsZero() {
		params["firstSeenFrom"] = f.FirstSeenFrom.Format(TimeLayout)
		params["firstSeenTo"] = f.FirstSeenTo.Format(TimeLayout)
	}
	if f.Action != "" {
		params["actions"] = f.Action
	}
	if f.ItemsPerPage > 0 {
		params["itemsPerPage"] = strconv.Itoa(f.ItemsPerPage)
	}
	return params
}

// Collector is an endpoint agent that reported an event.
type Collector struct {
	Device string `json:"device"`
}

// Event is a security event raised by the console.
type Event struct {
	EventID        int64       `json:"eventId"`
	Process        string      `json:"process"`
	FirstSeen      string      `json:"firstSeen"`
	LastSeen       string      `json:"lastSeen"`
	Classification string      `json:"classification"`
	Action         string      `json:"action"`
	Collectors     []Collector `json:"collectors"`

	// Raw is the event exactly as the console returned it.
	Raw json.RawMessage `json:"-"`
}

// EventRow is an Event flattened for tabular output.
type EventRow struct {
	Index          int
	EventID        string
	Process        string
	FirstSeen      string
	LastSeen       string
	Classification string
	Device         string
	Action         string
}

// EventHeaders are the column titles matching EventRow.Cells.
var EventHeaders = []string{"#", "Event ID", "Process", "First Seen", "Last Seen", "Classification", "Device", "Action"}

// Cells returns the row in EventHeaders order.
func (r EventRow) Cells() []string {
	return []string{
		strconv.Itoa(r.Index), r.EventID, r.Process, r.FirstSeen, r.LastSeen, r.Classification, r.Device, r.Action,
	}
}

// EventRows flattens events, numbering them from 1. Events without a
// collector report the device as N/A.
func EventRows(events []Event) []EventRow {
	rows := make([]EventRow, 0, len(events))
	for i, e := range events {
		device := "N/A"
		if len(e.Collectors) > 0 {
			device = e.Collectors[0].Device
		}
		rows = append(rows, EventRow{
			Index:          i + 1,
			EventID:        strconv.FormatInt(e.EventID, 10),
			Process:        e.Process,
			FirstSeen:      e.FirstSeen,
			LastSeen:       e.LastSeen,
			Classification: e.Classification,
			Device:         device,
			Action:         e.Action,
		})
	}
	return rows
}

// ListEvents fetches the events matching f.
func (c *Client) ListEvents(ctx context.Context, f EventFilter) ([]Event, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	query := url.Values{}
	for k, v := range f.Params() {
		query.Set(k, v)
	}

	data, err := c.do(ctx, http.MethodGet, "/events/list-events", query, nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeItems(data)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(items))
	for _, item := range items {
		var e Event
		if err := json.Unmarshal(item, &e); err != nil {
			return nil, appErrors.New(appErrors.CodeAPIFailed, fmt.Sprintf("decode event: %v", err), err)
		}
		e.Raw = item
		events = append(events, e)
	}
	return events, nil
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}
