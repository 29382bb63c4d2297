package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/RollCut/internal/model"
)

// buildTestReport returns a two-order plan on a 100 mm roll with one order
// left over.
func buildTestReport() Report {
	return Report{
		Description: "Test job",
		RollWidth:   100,
		Result: model.PlacementResult{
			RunID: "run-1",
			Placed: []model.Order{
				model.NewOrder(2, 30, 50, "Back").Place(50, 0, true),
				model.NewOrder(1, 50, 50, "Front").Place(0, 0, false),
			},
			Unplaced:    []model.Order{model.NewOrder(3, 150, 10, "Too wide")},
			Anchors:     []model.Point{{X: 0, Y: 50}, {X: 80, Y: 0}, {X: 50, Y: 30}},
			Height:      50,
			Utilization: 80,
			Chunks: []model.ChunkReport{
				{Index: 0, Size: 2, Offset: 0, Height: 50, Feasible: true, Calls: 12},
				{Index: 1, Size: 1, Feasible: false, Calls: 1},
			},
			Calls: 13,
		},
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, buildTestReport()); err != nil {
		t.Fatalf("WriteReport returned error: %v", err)
	}

	want := strings.Join([]string{
		"Test job",
		"Benötigte Länge: 5.0cm",
		"Genutzte Flaeche: 80.00%",
		"",
		"Positionierung der Kundenaufträge:",
		"0 0 50 50 - 1 - Front",
		"50 0 100 30 - 2 - Back",
		"",
		"Verbleibende Andockpunkte:",
		"80 0",
		"50 30",
		"0 50",
		"",
		"Nicht platzierte Kundenaufträge:",
		"150 x 10 - 3 - Too wide",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("unexpected report:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteReport_DoesNotReorderResult(t *testing.T) {
	rep := buildTestReport()
	if err := WriteReport(&bytes.Buffer{}, rep); err != nil {
		t.Fatal(err)
	}
	if rep.Result.Placed[0].ID != 2 || rep.Result.Anchors[0] != (model.Point{X: 0, Y: 50}) {
		t.Error("report sorted the caller's slices")
	}
}

func TestWriteReportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.out")
	if err := WriteReportFile(path, buildTestReport()); err != nil {
		t.Fatalf("WriteReportFile returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Test job\n") {
		t.Errorf("unexpected file content: %q", data)
	}

	if err := WriteReportFile(filepath.Join(t.TempDir(), "missing", "job.out"), buildTestReport()); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestReport_LengthCM(t *testing.T) {
	rep := Report{Result: model.PlacementResult{Height: 1234}}
	if got := rep.LengthCM(); got != 123.4 {
		t.Errorf("LengthCM() = %v, want 123.4", got)
	}
}
