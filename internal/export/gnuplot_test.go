package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteGnuplot(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGnuplot(&buf, buildTestReport(), "job.png"); err != nil {
		t.Fatalf("WriteGnuplot returned error: %v", err)
	}
	script := buf.String()

	for _, want := range []string{
		"reset\n",
		"set output 'job.png'\n",
		"set xrange [0:100]\n",
		"set yrange [0:100]\n",
		"Test job\\n\\\n",
		"Benötigte Länge: 5.0cm\\n\\\n",
		"Genutzte Fläche: 80.00%\"\n",
		"$data <<EOD\n0 0 50 50 \"Front\" 1\n50 0 100 30 \"Back\" 2\nEOD\n",
		"$anchor <<EOD\n80 0\n50 30\n0 50\nEOD\n",
		"with boxxy linecolor var",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script is missing %q", want)
		}
	}
}

func TestPlotRangeY(t *testing.T) {
	tests := []struct {
		height int
		want   int
	}{
		{0, 100},
		{50, 100},
		{100, 110},
		{1000, 1100},
		{95, 104},
	}
	for _, tt := range tests {
		if got := plotRangeY(tt.height); got != tt.want {
			t.Errorf("plotRangeY(%d) = %d, want %d", tt.height, got, tt.want)
		}
	}
}

func TestGnuplotEscape(t *testing.T) {
	if got := gnuplotEscape(`a "b" c\d` + "\ne"); got != `a \"b\" cd\ne` {
		t.Errorf("unexpected escape result %q", got)
	}
}

func TestWriteGnuplotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.gnu")
	if err := WriteGnuplotFile(path, buildTestReport(), "job.png"); err != nil {
		t.Fatalf("WriteGnuplotFile returned error: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("script not written: %v", err)
	}
}

func TestRunGnuplot_MissingBinary(t *testing.T) {
	script := filepath.Join(t.TempDir(), "job.gnu")
	_, err := RunGnuplot(context.Background(), filepath.Join(t.TempDir(), "no-such-gnuplot"), script)
	if err == nil {
		t.Error("expected error for a missing gnuplot binary")
	}
}
