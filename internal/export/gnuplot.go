package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// DefaultGnuplotBinary is looked up in PATH when no binary is configured.
const DefaultGnuplotBinary = "gnuplot"

// plotRangeY returns the upper y range of the plot: 10% above the roll
// length, never below 100.
func plotRangeY(height int) int {
	return max(height*11/10, 100)
}

// WriteGnuplot writes a gnuplot script that renders the layout into pngPath.
// Placed orders become filled boxes labeled with their description, the
// remaining anchors are drawn as circles.
func WriteGnuplot(w io.Writer, rep Report, pngPath string) error {
	bw := bufio.NewWriter(w)
	yMax := plotRangeY(rep.Result.Height)

	fmt.Fprintln(bw, "reset")
	fmt.Fprintf(bw, "set term png size %d,%d\n", max(rep.RollWidth, 100), yMax+100)
	fmt.Fprintf(bw, "set output '%s'\n", strings.ReplaceAll(pngPath, "'", "''"))
	fmt.Fprintf(bw, "set xrange [0:%d]\n", rep.RollWidth)
	fmt.Fprintf(bw, "set yrange [0:%d]\n", yMax)
	fmt.Fprintln(bw, "set size ratio -1")
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, `set title "\`)
	fmt.Fprintf(bw, "%s\\n\\\n", gnuplotEscape(rep.Description))
	fmt.Fprintf(bw, "Benötigte Länge: %.1fcm\\n\\\n", rep.LengthCM())
	fmt.Fprintf(bw, "Genutzte Fläche: %.2f%%\"\n", rep.Result.Utilization)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "set style fill transparent solid 0.5 border")
	fmt.Fprintln(bw, "set key noautotitle")
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "$data <<EOD")
	for _, o := range rep.placedByID() {
		fmt.Fprintf(bw, "%d %d %d %d \"%s\" %d\n", o.XLU(), o.YLU(), o.XRO(), o.YRO(), gnuplotEscape(o.Label), o.ID)
	}
	fmt.Fprintln(bw, "EOD")
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "$anchor <<EOD")
	for _, p := range rep.sortedAnchors() {
		fmt.Fprintf(bw, "%d %d\n", p.X, p.Y)
	}
	fmt.Fprintln(bw, "EOD")
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, `plot \`)
	fmt.Fprintln(bw, `'$data' using (($3-$1)/2+$1):(($4-$2)/2+$2):(($3-$1)/2):(($4-$2)/2):6 with boxxy linecolor var, \`)
	fmt.Fprintln(bw, `'$data' using (($3-$1)/2+$1):(($4-$2)/2+$2):5 with labels font "arial,9", \`)
	fmt.Fprintln(bw, `'$anchor' using 1:2 with circles lc rgb "red", \`)
	fmt.Fprintln(bw, `'$data' using 1:2 with points lw 8 lc rgb "dark-green"`)

	return bw.Flush()
}

// WriteGnuplotFile writes the gnuplot script to path.
func WriteGnuplotFile(path string, rep Report, pngPath string) error {
	return writeFile(path, func(w io.Writer) error { return WriteGnuplot(w, rep, pngPath) })
}

// RunGnuplot executes the script with the given gnuplot binary and returns
// the combined output. A missing binary or a non-zero exit is an error.
func RunGnuplot(ctx context.Context, binary, scriptPath string) (string, error) {
	if binary == "" {
		binary = DefaultGnuplotBinary
	}
	out, err := exec.CommandContext(ctx, binary, scriptPath).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("gnuplot %s: %w", scriptPath, err)
	}
	return string(out), nil
}
