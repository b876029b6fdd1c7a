package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	styleTableHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true).Padding(0, 1)
	styleTableCell   = lipgloss.NewStyle().Padding(0, 1)
	styleTableBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleRequest     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func validateOutput(format string) error {
	switch strings.ToLower(format) {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output %q (want table or json)", format)
	}
}

// renderTable lays rows out under headers with a rounded border.
func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			return styleTableCell
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

// printRequest echoes API request parameters before the call is made.
func printRequest(w io.Writer, params any) {
	data, err := json.Marshal(params)
	if err != nil {
		data = []byte(fmt.Sprint(params))
	}
	fmt.Fprintf(w, "\n%s\n\n", styleRequest.Render("API Request: "+string(data)))
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
