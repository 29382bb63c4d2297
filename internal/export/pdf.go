package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/RollCut/internal/model"
)

// orderColor represents an RGB color for a placed order.
type orderColor struct {
	R, G, B int
}

var orderColors = []orderColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// colorFor picks a stable color per order id.
func colorFor(id int) orderColor {
	if id < 0 {
		id = -id
	}
	return orderColors[id%len(orderColors)]
}

// Page layout constants (A4 portrait in mm).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 20.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 10.0
	drawAreaTop  = marginTop + headerHeight + 8.0
	drawWidth    = pageWidth - marginLeft - marginRight
	drawHeight   = pageHeight - drawAreaTop - marginBottom - 10.0
)

// rollBand is the part of the roll drawn on one page, [From, To) in roll
// coordinates.
type rollBand struct {
	From, To int
}

// pageBands splits the roll length into bands that fit the drawing area at
// the scale given by the roll width.
func pageBands(rollWidth, height int) (scale float64, bands []rollBand) {
	scale = drawWidth / float64(rollWidth)
	if height <= 0 {
		return scale, []rollBand{{0, 0}}
	}
	bandLen := max(int(math.Floor(drawHeight/scale)), 1)
	for from := 0; from < height; from += bandLen {
		bands = append(bands, rollBand{From: from, To: min(from+bandLen, height)})
	}
	return scale, bands
}

// ExportPDF renders the roll layout to a PDF. The roll runs down the page
// from its start; long rolls continue over several pages. A summary page
// with the plan figures and the unplaced orders follows.
func ExportPDF(path string, rep Report) error {
	if rep.RollWidth <= 0 {
		return fmt.Errorf("invalid roll width %d", rep.RollWidth)
	}
	if len(rep.Result.Placed) == 0 {
		return fmt.Errorf("no placed orders to export")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	scale, bands := pageBands(rep.RollWidth, rep.Result.Height)
	for i, band := range bands {
		pdf.AddPage()
		renderBandPage(pdf, tr, rep, band, scale, i+1, len(bands))
	}

	pdf.AddPage()
	renderSummaryPage(pdf, tr, rep)

	return pdf.OutputFileAndClose(path)
}

// renderBandPage draws one band of the roll on the current page.
func renderBandPage(pdf *fpdf.Fpdf, tr func(string) string, rep Report, band rollBand, scale float64, pageNum, pages int) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s (%d/%d)", rep.Description, pageNum, pages)
	pdf.CellFormat(drawWidth, headerHeight, tr(title), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Roll width: %d mm | Length: %d - %d mm of %d mm | Utilization: %.2f%%",
		rep.RollWidth, band.From, band.To, rep.Result.Height, rep.Result.Utilization)
	pdf.CellFormat(drawWidth, 5, stats, "", 0, "L", false, 0, "")

	canvasW := float64(rep.RollWidth) * scale
	canvasH := float64(band.To-band.From) * scale
	offsetX := marginLeft
	offsetY := drawAreaTop

	// Roll material
	pdf.SetFillColor(235, 225, 205)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.4)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	pdf.ClipRect(offsetX, offsetY, canvasW, canvasH, false)
	for _, o := range rep.Result.Placed {
		if o.YRO() <= band.From || o.YLU() >= band.To {
			continue
		}
		drawOrder(pdf, tr, o, band, scale, offsetX, offsetY)
	}
	drawAnchors(pdf, rep.Result.Anchors, band, scale, offsetX, offsetY)
	pdf.ClipEnd()

	drawRuler(pdf, band, scale, offsetX, offsetY, canvasH)
}

// drawOrder renders one placed order clipped to the band.
func drawOrder(pdf *fpdf.Fpdf, tr func(string) string, o model.Order, band rollBand, scale, offsetX, offsetY float64) {
	col := colorFor(o.ID)
	ox := offsetX + float64(o.XLU())*scale
	oy := offsetY + float64(o.YLU()-band.From)*scale
	ow := float64(o.PlacedWidth()) * scale
	oh := float64(o.PlacedHeight()) * scale

	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.3)
	pdf.Rect(ox, oy, ow, oh, "FD")

	// Label the visible part of the order
	visTop := math.Max(oy, offsetY)
	visBottom := math.Min(oy+oh, offsetY+float64(band.To-band.From)*scale)
	visH := visBottom - visTop
	if ow <= 12 || visH <= 6 {
		return
	}

	pdf.SetFont("Helvetica", "", labelFontSize(ow, visH))
	pdf.SetTextColor(0, 0, 0)

	label := tr(fmt.Sprintf("#%d %s", o.ID, o.Label))
	dims := fmt.Sprintf("%dx%d", o.Width, o.Height)
	if o.Rotated {
		dims += " R"
	}

	cy := visTop + visH/2
	if lw := pdf.GetStringWidth(label); lw < ow-2 {
		pdf.SetXY(ox+(ow-lw)/2, cy-4)
		pdf.CellFormat(lw, 4, label, "", 0, "C", false, 0, "")
	}
	if dw := pdf.GetStringWidth(dims); visH > 12 && dw < ow-2 {
		pdf.SetXY(ox+(ow-dw)/2, cy)
		pdf.CellFormat(dw, 4, dims, "", 0, "C", false, 0, "")
	}
}

// drawAnchors marks the remaining anchors inside the band.
func drawAnchors(pdf *fpdf.Fpdf, anchors []model.Point, band rollBand, scale, offsetX, offsetY float64) {
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.3)
	for _, p := range anchors {
		if p.Y < band.From || p.Y > band.To {
			continue
		}
		pdf.Circle(offsetX+float64(p.X)*scale, offsetY+float64(p.Y-band.From)*scale, 1.2, "D")
	}
}

// drawRuler annotates the roll length along the left edge.
func drawRuler(pdf *fpdf.Fpdf, band rollBand, scale, offsetX, offsetY, canvasH float64) {
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetDrawColor(80, 80, 80)
	pdf.SetLineWidth(0.2)

	step := rulerStep(scale)
	first := (band.From + step - 1) / step * step
	for y := first; y <= band.To; y += step {
		py := offsetY + float64(y-band.From)*scale
		pdf.Line(offsetX-2, py, offsetX, py)
		label := fmt.Sprintf("%d", y)
		lw := pdf.GetStringWidth(label)
		pdf.SetXY(offsetX-3-lw, py-1.5)
		pdf.CellFormat(lw, 3, label, "", 0, "R", false, 0, "")
	}
	if canvasH > 0 {
		pdf.Line(offsetX-1, offsetY, offsetX-1, offsetY+canvasH)
	}
	pdf.SetTextColor(0, 0, 0)
}

// rulerStep picks a round tick distance in millimetres of roll so that
// ticks are at least 10 mm apart on paper.
func rulerStep(scale float64) int {
	for _, step := range []int{10, 20, 50, 100, 200, 500, 1000, 2000, 5000} {
		if float64(step)*scale >= 10 {
			return step
		}
	}
	return 10000
}

// renderSummaryPage draws the plan figures, the chunk breakdown and the
// unplaced orders.
func renderSummaryPage(pdf *fpdf.Fpdf, tr func(string) string, rep Report) {
	res := rep.Result

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(drawWidth, 10, "Roll Plan Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	summaryItems := []struct {
		label string
		value string
	}{
		{"Description", tr(rep.Description)},
		{"Run", res.RunID},
		{"Roll Width", fmt.Sprintf("%d mm", rep.RollWidth)},
		{"Required Length", fmt.Sprintf("%.1f cm", rep.LengthCM())},
		{"Utilization", fmt.Sprintf("%.2f%%", res.Utilization)},
		{"Orders Placed", fmt.Sprintf("%d", len(res.Placed))},
		{"Unplaced Orders", fmt.Sprintf("%d", len(res.Unplaced))},
		{"Search Calls", fmt.Sprintf("%d", res.Calls)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(45, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(120, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	if len(res.Chunks) > 0 {
		y += 5
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(100, 7, "Chunks", "", 0, "L", false, 0, "")
		y += 9

		colWidths := []float64{20, 25, 35, 35, 30, 30}
		headers := []string{"Chunk", "Orders", "Offset", "Height", "Feasible", "Calls"}

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		xPos := marginLeft
		for i, header := range headers {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
			xPos += colWidths[i]
		}
		y += 6

		pdf.SetFont("Helvetica", "", 9)
		for i, c := range res.Chunks {
			if y > pageHeight-marginBottom-20 {
				pdf.AddPage()
				y = marginTop
			}
			feasible := "yes"
			if !c.Feasible {
				feasible = "no"
			}
			rowData := []string{
				fmt.Sprintf("%d", c.Index+1),
				fmt.Sprintf("%d", c.Size),
				fmt.Sprintf("%d mm", c.Offset),
				fmt.Sprintf("%d mm", c.Height),
				feasible,
				fmt.Sprintf("%d", c.Calls),
			}

			if i%2 == 0 {
				pdf.SetFillColor(245, 245, 245)
			} else {
				pdf.SetFillColor(255, 255, 255)
			}

			xPos = marginLeft
			for j, cell := range rowData {
				pdf.SetXY(xPos, y)
				pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
				xPos += colWidths[j]
			}
			y += 6
		}
	}

	if len(res.Unplaced) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(drawWidth, 7, "WARNING: Unplaced Orders", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, o := range res.Unplaced {
			if y > pageHeight-marginBottom-10 {
				pdf.AddPage()
				y = marginTop
			}
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- #%d %s: %d x %d mm", o.ID, o.Label, o.Width, o.Height)
			pdf.CellFormat(drawWidth-5, 5, tr(text), "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(drawWidth, 4, "Generated by RollCut - roll cutting planner", "", 0, "C", false, 0, "")
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
