package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/RollCut/internal/model"
)

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.pdf")

	if err := ExportPDF(path, buildTestReport()); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_LongRoll(t *testing.T) {
	// A narrow, long roll spreads over several pages
	var placed []model.Order
	for i := 0; i < 40; i++ {
		placed = append(placed, model.NewOrder(i+1, 100, 100, "Panel Ä").Place(0, i*100, false))
	}
	rep := Report{
		Description: "Long roll",
		RollWidth:   100,
		Result: model.PlacementResult{
			Placed:      placed,
			Anchors:     []model.Point{{X: 0, Y: 4000}},
			Height:      4000,
			Utilization: 100,
		},
	}

	path := filepath.Join(t.TempDir(), "long.pdf")
	if err := ExportPDF(path, rep); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
}

func TestExportPDF_NothingPlaced(t *testing.T) {
	rep := Report{Description: "empty", RollWidth: 100}
	if err := ExportPDF(filepath.Join(t.TempDir(), "empty.pdf"), rep); err == nil {
		t.Error("expected error for a plan without placed orders")
	}
}

func TestExportPDF_InvalidRollWidth(t *testing.T) {
	rep := buildTestReport()
	rep.RollWidth = 0
	if err := ExportPDF(filepath.Join(t.TempDir(), "bad.pdf"), rep); err == nil {
		t.Error("expected error for zero roll width")
	}
}

func TestPageBands(t *testing.T) {
	scale, bands := pageBands(100, 4000)
	if scale != drawWidth/100 {
		t.Errorf("unexpected scale %f", scale)
	}
	if len(bands) < 2 {
		t.Fatalf("expected several bands, got %d", len(bands))
	}
	if bands[0].From != 0 || bands[len(bands)-1].To != 4000 {
		t.Errorf("bands do not cover the roll: %v", bands)
	}
	for i := 1; i < len(bands); i++ {
		if bands[i].From != bands[i-1].To {
			t.Errorf("gap between band %d and %d", i-1, i)
		}
	}

	// A wide, short roll fits on one page
	if _, bands := pageBands(2000, 500); len(bands) != 1 {
		t.Errorf("expected one band, got %d", len(bands))
	}
}

func TestRulerStep(t *testing.T) {
	if got := rulerStep(1); got != 10 {
		t.Errorf("rulerStep(1) = %d, want 10", got)
	}
	if got := rulerStep(0.1); got != 100 {
		t.Errorf("rulerStep(0.1) = %d, want 100", got)
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{50, 50, 8},
		{30, 100, 7},
		{10, 10, 6},
	}
	for _, tt := range tests {
		if got := labelFontSize(tt.w, tt.h); got != tt.want {
			t.Errorf("labelFontSize(%v, %v) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}
