package model

// BatchResult is the best arrangement found for one chunk, in chunk-local
// coordinates. A nil *BatchResult means the chunk is infeasible.
type BatchResult struct {
	Placed  []Order `json:"placed"`
	Anchors []Point `json:"anchors"`
	Height  int     `json:"height"`
}

// ChunkReport describes how one chunk of orders fared.
type ChunkReport struct {
	Index    int   `json:"index"`
	Size     int   `json:"size"`
	Offset   int   `json:"offset"` // global y where the chunk was stacked
	Height   int   `json:"height"` // chunk-local height, 0 if infeasible
	Feasible bool  `json:"feasible"`
	Calls    int64 `json:"calls"` // recursive search calls spent on the chunk
}

// PlacementResult holds the full solution in global roll coordinates.
type PlacementResult struct {
	RunID       string        `json:"run_id"`
	Placed      []Order       `json:"placed"`
	Unplaced    []Order       `json:"unplaced"`
	Anchors     []Point       `json:"anchors"`
	Height      int           `json:"height"`
	Utilization float64       `json:"utilization"` // percent of rollWidth x Height covered
	Chunks      []ChunkReport `json:"chunks"`
	Calls       int64         `json:"calls"`
}

// UsedArea returns the total area of all placed orders.
func (r PlacementResult) UsedArea() int {
	total := 0
	for _, o := range r.Placed {
		total += o.Area()
	}
	return total
}

// Order looks up an order by id among placed and unplaced orders.
func (r PlacementResult) Order(id int) (Order, bool) {
	for _, o := range r.Placed {
		if o.ID == id {
			return o, true
		}
	}
	for _, o := range r.Unplaced {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

// Complete reports whether every order was placed.
func (r PlacementResult) Complete() bool {
	return len(r.Unplaced) == 0
}

// Utilization returns used area as a percentage of rollWidth x height.
func Utilization(orders []Order, rollWidth, height int) float64 {
	if height <= 0 || rollWidth <= 0 {
		return 0
	}
	var area float64
	for _, o := range orders {
		area += float64(o.Area())
	}
	return area / (float64(rollWidth) * float64(height)) * 100.0
}

// MaxY returns the highest top edge among placed orders, or 0.
func MaxY(orders []Order) int {
	maxY := 0
	for _, o := range orders {
		if o.Placed && o.YRO() > maxY {
			maxY = o.YRO()
		}
	}
	return maxY
}
