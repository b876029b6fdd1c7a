package fortiedr

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	appErrors "mitremenu/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuntFilterParams(t *testing.T) {
	cases := []struct {
		name   string
		filter HuntFilter
		want   map[string]any
	}{
		{"Empty", HuntFilter{}, map[string]any{}},
		{
			"Predefined",
			HuntFilter{ItemsPerPage: 10, Category: "Process", Period: "last24hours"},
			map[string]any{"itemsPerPage": 10, "category": "Process", "time": "last24hours"},
		},
		{
			"Custom",
			HuntFilter{Period: "custom", From: time.Date(2026, 3, 1, 17, 45, 0, 0, time.UTC)},
			map[string]any{"time": "custom", "fromTime": "2026-03-01 00:00:00"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Params())
		})
	}
}

func TestHuntFilterValidate(t *testing.T) {
	assert.NoError(t, HuntFilter{Category: "event log", Period: "LastHour"}.Validate())

	for _, f := range []HuntFilter{
		{Category: "Memory"},
		{Period: "yesterday"},
		{Period: "custom"},
		{ItemsPerPage: -1},
	} {
		err := f.Validate()
		require.Error(t, err, "%+v", f)
		assert.True(t, appErrors.IsCode(err, appErrors.CodeConfigurationError))
	}
}

func TestThreatHunt(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/management-rest/threat-hunting/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		_, _ = io.WriteString(w, `[
			{"Time": 1772359200000, "Type": "Process Creation", "Device": {"Name": "WIN-LAB-01"},
			 "Source": {"Process": {"Name": "powershell.exe", "CommandLine": "powershell -nop",
			            "User": {"Username": "LAB\\analyst"}}},
			 "Target": {"File": {"Path": "C:\\Temp\\hello.log"}}},
			{"Time": 1772359260000, "Type": "Registry Write", "Device": {"Name": "WIN-LAB-02"},
			 "Source": {}, "Target": {}}
		]`)
	})

	events, err := client.ThreatHunt(context.Background(), HuntFilter{Category: "Process", Period: "lastHour", ItemsPerPage: 5})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, map[string]any{"category": "Process", "time": "lastHour", "itemsPerPage": float64(5)}, body)

	rows := HuntRows(events, time.UTC)
	assert.Equal(t, []string{
		"1", "2026-03-01 10:00:00", "Process Creation", "WIN-LAB-01",
		"powershell.exe", "powershell -nop", `C:\Temp\hello.log`, `LAB\analyst`,
	}, rows[0].Cells())

	sparse := rows[1]
	assert.Equal(t, "N/A", sparse.ProcessName)
	assert.Equal(t, "N/A", sparse.CommandLine)
	assert.Equal(t, "N/A", sparse.TargetPath)
	assert.Equal(t, "N/A", sparse.User)
	assert.Len(t, HuntHeaders, len(sparse.Cells()))
}

func TestThreatHuntForbidden(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, err := client.ThreatHunt(context.Background(), HuntFilter{})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeAuthFailed))
}
