package model

import "fmt"

// Point is an integer coordinate on the roll, used as a docking point for
// the lower-left corner of the next order.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Order is a rectangular customer order to be cut from the roll.
//
// Orders are values: Place and Clear return modified copies and never touch
// the receiver, so every search branch can hold its own copy without locking.
type Order struct {
	ID     int    `json:"id"`
	Label  string `json:"label"`
	Width  int    `json:"width"`  // original width
	Height int    `json:"height"` // original height

	Placed  bool `json:"placed"`
	X       int  `json:"x"`       // lower-left corner, from the left roll edge
	Y       int  `json:"y"`       // lower-left corner, from the roll start
	Rotated bool `json:"rotated"` // turned by 90°, width and height swapped
}

// NewOrder returns an unplaced order of w x h millimetres.
func NewOrder(id, w, h int, label string) Order {
	return Order{
		ID:     id,
		Label:  label,
		Width:  w,
		Height: h,
	}
}

// Place returns a copy of the order positioned at (x, y).
func (o Order) Place(x, y int, rotated bool) Order {
	o.Placed = true
	o.X = x
	o.Y = y
	o.Rotated = rotated
	return o
}

// Clear returns an unplaced copy of the order.
func (o Order) Clear() Order {
	o.Placed = false
	o.X = 0
	o.Y = 0
	o.Rotated = false
	return o
}

// PlacedWidth returns the effective width considering rotation.
func (o Order) PlacedWidth() int {
	if o.Rotated {
		return o.Height
	}
	return o.Width
}

// PlacedHeight returns the effective height considering rotation.
func (o Order) PlacedHeight() int {
	if o.Rotated {
		return o.Width
	}
	return o.Height
}

// Dims returns width and height for the given orientation.
func (o Order) Dims(rotated bool) (w, h int) {
	if rotated {
		return o.Height, o.Width
	}
	return o.Width, o.Height
}

func (o Order) XLU() int { return o.X }
func (o Order) YLU() int { return o.Y }
func (o Order) XRO() int { return o.X + o.PlacedWidth() }
func (o Order) YRO() int { return o.Y + o.PlacedHeight() }

// Area returns width times height.
func (o Order) Area() int {
	return o.Width * o.Height
}

// MinSide returns the shorter side of the order.
func (o Order) MinSide() int {
	if o.Width < o.Height {
		return o.Width
	}
	return o.Height
}

// IsSquare reports whether rotating the order changes nothing.
func (o Order) IsSquare() bool {
	return o.Width == o.Height
}

// Orientations lists the distinct orientations worth trying: squares only
// have one.
func (o Order) Orientations() []bool {
	if o.IsSquare() {
		return []bool{false}
	}
	return []bool{false, true}
}

// FitsWidth reports whether the order fits a roll of the given width in at
// least one orientation.
func (o Order) FitsWidth(rollWidth int) bool {
	return o.MinSide() <= rollWidth
}

// Overlaps reports whether the interiors of two placed orders intersect.
// Touching edges do not count.
func (o Order) Overlaps(other Order) bool {
	if !o.Placed || !other.Placed {
		return false
	}
	return o.XLU() < other.XRO() && o.XRO() > other.XLU() &&
		o.YLU() < other.YRO() && o.YRO() > other.YLU()
}

// Covers reports whether p lies in the half-open box [xLU,xRO) x [yLU,yRO).
// A point on the right or top edge stays usable as a docking point.
func (o Order) Covers(p Point) bool {
	if !o.Placed {
		return false
	}
	return p.X >= o.XLU() && p.X < o.XRO() &&
		p.Y >= o.YLU() && p.Y < o.YRO()
}

func (o Order) String() string {
	return fmt.Sprintf("%d, %d, %d, %s", o.Width, o.Height, o.ID, o.Label)
}
