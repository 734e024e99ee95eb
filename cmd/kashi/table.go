package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable writes rows under headers. Terminals get a rounded table with
// the columns listed in numeric right aligned; pipes get tab-separated lines.
func renderTable(out io.Writer, headers []string, rows [][]string, numeric ...int) {
	if len(headers) == 0 {
		return
	}
	if !isTerminal(out) {
		writeTSV(out, headers, rows)
		return
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers, len(headers)))
	for _, row := range rows {
		tw.AppendRow(toRow(row, len(headers)))
	}
	configs := make([]table.ColumnConfig, len(headers))
	for i := range configs {
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
		if slices.Contains(numeric, i) {
			configs[i].Align = text.AlignRight
		}
	}
	tw.SetColumnConfigs(configs)
	fmt.Fprintln(out, tw.Render())
}

// toRow pads or truncates cells to width.
func toRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		row[i] = ""
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	return row
}

func writeTSV(out io.Writer, headers []string, rows [][]string) {
	line := make([]string, len(headers))
	fmt.Fprintln(out, strings.Join(headers, "\t"))
	for _, row := range rows {
		for i := range line {
			line[i] = ""
			if i < len(row) {
				line[i] = strings.ReplaceAll(row[i], "\t", " ")
			}
		}
		fmt.Fprintln(out, strings.Join(line, "\t"))
	}
}
