// ABOUTME: Terminal tables for run histories
// ABOUTME: Renders sampled per-step statistics with go-pretty

package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// WriteTable renders up to maxRows evenly spaced records to w
func (h *History) WriteTable(w io.Writer, maxRows int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s history", h.Name()))
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Step", "Size", "Best", "Mean", "Worst", "Best so far", "Elapsed"})
	for _, r := range sample(h.Records(), maxRows) {
		t.AppendRow(table.Row{
			r.Step,
			r.Size,
			formatFitness(r.Best),
			formatFitness(r.Mean),
			formatFitness(r.Worst),
			formatFitness(r.BestSoFar),
			r.Elapsed.Round(time.Millisecond).String(),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})

	t.Render()
}

func formatFitness(f float64) string {
	return fmt.Sprintf("%.6g", f)
}
