package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"stitch/internal/history"
)

// renderRunsTable lays out run records for `stitch runs list`: newest first,
// numeric columns right-aligned, and the result column holding either the
// deliverable path or the failure message.
func renderRunsTable(records []*history.Record) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Run", "Outcome", "Clips", "Duration", "Started", "Result"})
	for _, record := range records {
		tw.AppendRow(table.Row{
			record.RunID,
			string(record.Outcome),
			record.ClipCount,
			formatDuration(record.Duration),
			record.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			firstNonEmpty(record.OutputPath, record.ErrorMessage),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// renderSettingsTable lays out key/value pairs for `stitch config show`.
func renderSettingsTable(settings [][2]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Setting", "Value"})
	for _, setting := range settings {
		tw.AppendRow(table.Row{setting[0], setting[1]})
	}
	return tw.Render()
}
