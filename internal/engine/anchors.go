package engine

import (
	"sort"

	"github.com/piwi3910/RollCut/internal/model"
)

// IsCovered reports whether p lies inside the half-open box of any placed
// order.
func IsCovered(p model.Point, placed []model.Order) bool {
	for _, o := range placed {
		if o.Covers(p) {
			return true
		}
	}
	return false
}

// ComputeAnchors returns the docking points used during the search: the
// origin plus the top-left and bottom-right corner of every placed order,
// restricted to 0 <= x < rollWidth and not covered by any placed order.
// The result is sorted by (y, x).
func ComputeAnchors(placed []model.Order, rollWidth int) []model.Point {
	return computeAnchors(placed, func(x int) bool { return x >= 0 && x < rollWidth })
}

// FinalAnchors is ComputeAnchors with an inclusive width bound (x <= rollWidth).
// It is used for the reported result only; an anchor on the right roll edge
// can never host an order.
func FinalAnchors(placed []model.Order, rollWidth int) []model.Point {
	return computeAnchors(placed, func(x int) bool { return x >= 0 && x <= rollWidth })
}

func computeAnchors(placed []model.Order, inBounds func(x int) bool) []model.Point {
	if len(placed) == 0 {
		return []model.Point{{X: 0, Y: 0}}
	}

	seen := make(map[model.Point]struct{}, 2*len(placed)+1)
	anchors := make([]model.Point, 0, 2*len(placed)+1)
	consider := func(p model.Point) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		if !inBounds(p.X) || p.Y < 0 || IsCovered(p, placed) {
			return
		}
		anchors = append(anchors, p)
	}

	consider(model.Point{X: 0, Y: 0})
	for _, o := range placed {
		if !o.Placed {
			continue
		}
		consider(model.Point{X: o.XLU(), Y: o.YRO()})
		consider(model.Point{X: o.XRO(), Y: o.YLU()})
	}

	if len(anchors) == 0 {
		origin := model.Point{X: 0, Y: 0}
		if !IsCovered(origin, placed) {
			return []model.Point{origin}
		}
		top := model.Point{X: 0, Y: model.MaxY(placed)}
		if !IsCovered(top, placed) {
			return []model.Point{top}
		}
		return nil
	}

	SortAnchors(anchors)
	return anchors
}

// SortAnchors orders points by y, then x.
func SortAnchors(points []model.Point) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].Y != points[j].Y {
			return points[i].Y < points[j].Y
		}
		return points[i].X < points[j].X
	})
}

// nextAnchors derives the anchor set after c was placed. placed already
// contains c. Anchors that c covers are dropped, including the one it was
// docked on, and the two new corners of c are added when usable. The input
// slice is not modified; the result stays sorted.
func nextAnchors(anchors []model.Point, c model.Order, placed []model.Order, rollWidth int) []model.Point {
	next := make([]model.Point, 0, len(anchors)+2)
	for _, p := range anchors {
		if !c.Covers(p) {
			next = append(next, p)
		}
	}

	added := false
	for _, p := range [2]model.Point{{X: c.XLU(), Y: c.YRO()}, {X: c.XRO(), Y: c.YLU()}} {
		if p.X < 0 || p.X >= rollWidth || p.Y < 0 || IsCovered(p, placed) || containsPoint(next, p) {
			continue
		}
		next = append(next, p)
		added = true
	}
	if added {
		SortAnchors(next)
	}
	return next
}

func containsPoint(points []model.Point, p model.Point) bool {
	for _, q := range points {
		if q == p {
			return true
		}
	}
	return false
}
