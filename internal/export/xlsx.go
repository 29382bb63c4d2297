package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the Excel report.
const (
	SheetSummary   = "Summary"
	SheetPlacement = "Placement"
	SheetUnplaced  = "Unplaced"
)

// ExportXLSX writes the plan to an Excel workbook with a summary sheet, the
// placements sorted by order id and the unplaced orders.
func ExportXLSX(path string, rep Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	for _, name := range []string{SheetPlacement, SheetUnplaced} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	res := rep.Result
	summary := [][]any{
		{"Description", rep.Description},
		{"Run", res.RunID},
		{"Roll width (mm)", rep.RollWidth},
		{"Length (mm)", res.Height},
		{"Utilization (%)", res.Utilization},
		{"Placed", len(res.Placed)},
		{"Unplaced", len(res.Unplaced)},
		{"Search calls", res.Calls},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return fmt.Errorf("failed to style summary: %w", err)
	}

	placement := [][]any{{"ID", "Label", "Width", "Height", "Rotated", "xLU", "yLU", "xRO", "yRO"}}
	for _, o := range rep.placedByID() {
		placement = append(placement, []any{o.ID, o.Label, o.Width, o.Height, o.Rotated, o.XLU(), o.YLU(), o.XRO(), o.YRO()})
	}
	if err := writeRows(f, SheetPlacement, placement); err != nil {
		return err
	}

	unplaced := [][]any{{"ID", "Label", "Width", "Height"}}
	for _, o := range res.Unplaced {
		unplaced = append(unplaced, []any{o.ID, o.Label, o.Width, o.Height})
	}
	if err := writeRows(f, SheetUnplaced, unplaced); err != nil {
		return err
	}

	for _, sheet := range []string{SheetPlacement, SheetUnplaced} {
		if err := f.SetCellStyle(sheet, "A1", "I1", bold); err != nil {
			return fmt.Errorf("failed to style %s header: %w", sheet, err)
		}
	}
	if err := f.SetColWidth(SheetSummary, "A", "B", 20); err != nil {
		return fmt.Errorf("failed to size summary columns: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// writeRows writes rows starting at A1.
func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
