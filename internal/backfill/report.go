package backfill

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderSummary prints the per-run report in the shape operators
// read after an overnight backfill.
func RenderSummary(w io.Writer, s Summary) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendRows([]table.Row{
		{"symbol", s.Symbol},
		{"date range", fmt.Sprintf("%s to %s", s.Start, s.End)},
		{"dates processed", s.TotalDates},
		{"successful dates", len(s.Successful)},
		{"failed dates", len(s.Failed)},
		{"trades collected", s.TotalTrades},
	})
	t.Render()

	if len(s.Failed) == 0 {
		return
	}
	failures := table.NewWriter()
	failures.SetStyle(table.StyleRounded)
	failures.SetOutputMirror(w)
	failures.AppendHeader(table.Row{"date", "reason"})
	for _, f := range s.Failed {
		failures.AppendRow(table.Row{f.Date, f.Reason})
	}
	failures.Render()
}

// PlainSummary is the text form used for notifications.
func PlainSummary(s Summary) string {
	out := fmt.Sprintf(
		"Backfill for %s (%s to %s)\ndates: %d, successful: %d, failed: %d, trades: %d\n",
		s.Symbol, s.Start, s.End,
		s.TotalDates, len(s.Successful), len(s.Failed), s.TotalTrades,
	)
	for _, f := range s.Failed {
		out += fmt.Sprintf("  %s: %s\n", f.Date, f.Reason)
	}
	return out
}
