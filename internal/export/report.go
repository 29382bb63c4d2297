// Package export writes planning results to text reports, gnuplot scripts,
// PDF layout sheets, QR-coded labels and Excel workbooks.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/piwi3910/RollCut/internal/model"
)

// Report bundles what every exporter needs: the job description, the roll
// the plan was made for, and the planning result.
type Report struct {
	Description string
	RollWidth   int
	Result      model.PlacementResult
}

// LengthCM returns the required roll length in centimetres.
func (r Report) LengthCM() float64 {
	return float64(r.Result.Height) / 10
}

// placedByID returns the placed orders sorted by id.
func (r Report) placedByID() []model.Order {
	placed := slices.Clone(r.Result.Placed)
	slices.SortFunc(placed, func(a, b model.Order) int { return a.ID - b.ID })
	return placed
}

// sortedAnchors returns the remaining anchors sorted by (y, x).
func (r Report) sortedAnchors() []model.Point {
	anchors := slices.Clone(r.Result.Anchors)
	slices.SortFunc(anchors, func(a, b model.Point) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return anchors
}

// WriteReport writes the plain text result (the .out format): description,
// required length, utilization, one line per placed order and the anchors
// left on the roll.
func WriteReport(w io.Writer, rep Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n", rep.Description)
	fmt.Fprintf(bw, "Benötigte Länge: %.1fcm\n", rep.LengthCM())
	fmt.Fprintf(bw, "Genutzte Flaeche: %.2f%%\n", rep.Result.Utilization)
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Positionierung der Kundenaufträge:")
	for _, o := range rep.placedByID() {
		fmt.Fprintf(bw, "%d %d %d %d - %d - %s\n", o.XLU(), o.YLU(), o.XRO(), o.YRO(), o.ID, o.Label)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Verbleibende Andockpunkte:")
	for _, p := range rep.sortedAnchors() {
		fmt.Fprintf(bw, "%d %d\n", p.X, p.Y)
	}

	if len(rep.Result.Unplaced) > 0 {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "Nicht platzierte Kundenaufträge:")
		for _, o := range rep.Result.Unplaced {
			fmt.Fprintf(bw, "%d x %d - %d - %s\n", o.Width, o.Height, o.ID, o.Label)
		}
	}

	return bw.Flush()
}

// WriteReportFile writes the text result to path.
func WriteReportFile(path string, rep Report) error {
	return writeFile(path, func(w io.Writer) error { return WriteReport(w, rep) })
}

// writeFile creates path and hands it to write, reporting the first error
// from writing or closing.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// gnuplotEscape makes s safe inside a double-quoted gnuplot string.
func gnuplotEscape(s string) string {
	r := strings.NewReplacer(`\`, "", `"`, `\"`, "\n", `\n`)
	return r.Replace(s)
}
