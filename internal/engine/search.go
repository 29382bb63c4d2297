package engine

import (
	"math"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/piwi3910/RollCut/internal/model"
	"github.com/piwi3910/RollCut/internal/pool"
)

// bestCell holds the best arrangement found so far for one chunk. It only
// ever moves to strictly lower heights; among equal heights the first
// offer wins.
type bestCell struct {
	p atomic.Pointer[model.BatchResult]
}

// height returns the best height so far, or math.MaxInt when nothing was
// found yet.
func (b *bestCell) height() int {
	if r := b.p.Load(); r != nil {
		return r.Height
	}
	return math.MaxInt
}

func (b *bestCell) get() *model.BatchResult {
	return b.p.Load()
}

// offer installs r if it beats the current best and reports whether it did.
func (b *bestCell) offer(r *model.BatchResult) bool {
	for {
		cur := b.p.Load()
		if cur != nil && r.Height >= cur.Height {
			return false
		}
		if b.p.CompareAndSwap(cur, r) {
			return true
		}
	}
}

// state is one node of the search tree. Slices are never written after
// construction, so children may share them with their parent.
type state struct {
	remaining []model.Order
	placed    []model.Order
	anchors   []model.Point
	height    int
}

// searcher runs the branch-and-bound search for a single chunk.
type searcher struct {
	rollWidth     int
	pool          *pool.Pool
	logger        *zap.Logger
	progressEvery int64

	best   bestCell
	calls  atomic.Int64
	faults atomic.Int64
}

func newSearcher(rollWidth int, p *pool.Pool, logger *zap.Logger, progressEvery int64) *searcher {
	return &searcher{
		rollWidth:     rollWidth,
		pool:          p,
		logger:        logger,
		progressEvery: progressEvery,
	}
}

// run searches the chunk from an empty roll and returns the best
// arrangement in chunk-local coordinates, or nil when none exists.
func (s *searcher) run(orders []model.Order) *model.BatchResult {
	if len(orders) == 0 {
		return &model.BatchResult{Anchors: ComputeAnchors(nil, s.rollWidth)}
	}
	s.search(state{
		remaining: orders,
		anchors:   ComputeAnchors(nil, s.rollWidth),
	})
	return s.best.get()
}

func (s *searcher) search(st state) {
	n := s.calls.Add(1)
	if s.progressEvery > 0 && n%s.progressEvery == 0 {
		best := -1
		if r := s.best.get(); r != nil {
			best = r.Height
		}
		s.logger.Debug("search progress",
			zap.Int64("calls", n),
			zap.Int("best_height", best),
		)
	}

	if len(st.remaining) == 0 {
		s.best.offer(&model.BatchResult{
			Placed:  st.placed,
			Anchors: st.anchors,
			Height:  st.height,
		})
		return
	}

	if len(st.placed) == 0 {
		s.searchRoot(st)
		return
	}

	if st.height >= s.best.height() {
		return
	}
	s.searchNext(st)
}

// searchRoot tries every order in every orientation at the origin. Each
// branch is handed to the pool; the call returns once all branches are done.
func (s *searcher) searchRoot(st state) {
	var g *pool.Group
	if s.pool != nil {
		g = s.pool.NewGroup()
	} else {
		g = &pool.Group{}
	}

	origin := model.Point{X: 0, Y: 0}
	for i, o := range st.remaining {
		rest := make([]model.Order, 0, len(st.remaining)-1)
		rest = append(rest, st.remaining[:i]...)
		rest = append(rest, st.remaining[i+1:]...)

		for _, rotated := range o.Orientations() {
			w, h := o.Dims(rotated)
			if w > s.rollWidth {
				continue
			}
			if h >= s.best.height() {
				continue
			}

			c := o.Place(origin.X, origin.Y, rotated)
			placed := []model.Order{c}
			child := state{
				remaining: rest,
				placed:    placed,
				anchors:   nextAnchors(st.anchors, c, placed, s.rollWidth),
				height:    c.YRO(),
			}
			g.Go(func() { s.search(child) })
		}
	}

	if err := g.Wait(); err != nil {
		s.faults.Add(int64(g.Faults()))
		s.logger.Error("search branch failed", zap.Error(err))
	}
}

// searchNext docks the head of the remaining list on every usable anchor,
// lowest first.
func (s *searcher) searchNext(st state) {
	head := st.remaining[0]
	rest := st.remaining[1:]

	minDim := math.MaxInt
	for _, o := range st.remaining {
		if m := o.MinSide(); m < minDim {
			minDim = m
		}
	}

	for _, p := range st.anchors {
		best := s.best.height()
		if p.Y >= best {
			break
		}
		if p.Y+minDim >= best {
			break
		}

		for _, rotated := range head.Orientations() {
			w, h := head.Dims(rotated)
			if p.Y+min(w, h) >= s.best.height() {
				continue
			}
			if p.X+w > s.rollWidth {
				continue
			}
			if p.Y+h >= s.best.height() {
				continue
			}

			c := head.Place(p.X, p.Y, rotated)
			if overlapsAny(c, st.placed) {
				continue
			}

			placed := append(st.placed[:len(st.placed):len(st.placed)], c)
			s.search(state{
				remaining: rest,
				placed:    placed,
				anchors:   nextAnchors(st.anchors, c, placed, s.rollWidth),
				height:    max(st.height, c.YRO()),
			})
		}
	}
}

func overlapsAny(c model.Order, placed []model.Order) bool {
	for _, o := range placed {
		if c.Overlaps(o) {
			return true
		}
	}
	return false
}
