// ABOUTME: Excel export of run histories
// ABOUTME: One sheet of per-step statistics and one summary sheet

package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const (
	historySheet = "History"
	summarySheet = "Summary"
)

var historyHeaders = []any{"Step", "Size", "Best", "Mean", "Worst", "Best so far", "Elapsed (s)"}

// WriteXLSX writes every record and a run summary to an xlsx workbook
func (h *History) WriteXLSX(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), historySheet); err != nil {
		return fmt.Errorf("failed to name history sheet: %w", err)
	}
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := h.writeHistorySheet(fx, headerStyle); err != nil {
		return err
	}
	if err := h.writeSummarySheet(fx, headerStyle); err != nil {
		return err
	}

	if err := fx.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func (h *History) writeHistorySheet(fx *excelize.File, headerStyle int) error {
	if err := fx.SetSheetRow(historySheet, "A1", &historyHeaders); err != nil {
		return fmt.Errorf("failed to write history header: %w", err)
	}
	if err := fx.SetCellStyle(historySheet, "A1", "G1", headerStyle); err != nil {
		return fmt.Errorf("failed to style history header: %w", err)
	}
	if err := fx.SetColWidth(historySheet, "C", "F", 14); err != nil {
		return fmt.Errorf("failed to size history columns: %w", err)
	}

	for i, r := range h.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.Step, r.Size, r.Best, r.Mean, r.Worst, r.BestSoFar, r.Elapsed.Seconds()}
		if err := fx.SetSheetRow(historySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write history row %d: %w", i+1, err)
		}
	}
	return nil
}

func (h *History) writeSummarySheet(fx *excelize.File, headerStyle int) error {
	desc, fitness, step, finished := h.Final()

	rows := [][]any{
		{"Field", "Value"},
		{"Algorithm", h.Name()},
		{"Steps recorded", h.Len()},
		{"Best so far", h.BestSoFar()},
		{"Improvements", h.Improvements()},
		{"Finished", finished},
	}
	if finished {
		rows = append(rows,
			[]any{"Final step", step},
			[]any{"Final fitness", fitness},
			[]any{"Final solution", desc},
		)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := fx.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}
	if err := fx.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}
	return fx.SetColWidth(summarySheet, "A", "A", 18)
}
