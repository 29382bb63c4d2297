package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	if err := ExportXLSX(path, buildTestReport()); err != nil {
		t.Fatalf("ExportXLSX returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("cannot reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != SheetSummary {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	rows, err := f.GetRows(SheetPlacement)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 placements, got %d rows", len(rows))
	}
	if rows[1][0] != "1" || rows[2][0] != "2" {
		t.Errorf("placements not sorted by id: %v", rows)
	}
	if rows[2][1] != "Back" || rows[2][7] != "100" {
		t.Errorf("unexpected placement row %v", rows[2])
	}

	if v, _ := f.GetCellValue(SheetSummary, "B4"); v != "50" {
		t.Errorf("expected length 50, got %q", v)
	}

	unplaced, err := f.GetRows(SheetUnplaced)
	if err != nil {
		t.Fatal(err)
	}
	if len(unplaced) != 2 || unplaced[1][1] != "Too wide" {
		t.Errorf("unexpected unplaced rows %v", unplaced)
	}
}
