package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/piwi3910/RollCut/internal/metrics"
	"github.com/piwi3910/RollCut/internal/model"
	"github.com/piwi3910/RollCut/internal/pool"
)

// DefaultProgressInterval is the number of recursive search calls between
// two progress log lines.
const DefaultProgressInterval = 50_000_000

// Optimizer plans orders onto a roll: it splits the orders into chunks,
// searches each chunk for its lowest arrangement and stacks the chunks.
type Optimizer struct {
	Settings model.PlanSettings

	pool          *pool.Pool
	ownsPool      bool
	logger        *zap.Logger
	progressEvery int64
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithPool shares an existing worker pool. Without it the optimizer creates
// its own pool sized to the CPU count and releases it on Close.
func WithPool(p *pool.Pool) Option {
	return func(o *Optimizer) {
		o.pool = p
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithProgressInterval sets how many search calls pass between progress log
// lines. Zero disables progress logging.
func WithProgressInterval(n int64) Option {
	return func(o *Optimizer) {
		o.progressEvery = n
	}
}

// New validates the settings and returns an optimizer. Invalid settings are
// reported as *model.ConfigError.
func New(settings model.PlanSettings, opts ...Option) (*Optimizer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	o := &Optimizer{
		Settings:      settings.Normalized(),
		logger:        zap.NewNop(),
		progressEvery: DefaultProgressInterval,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.pool == nil {
		o.pool = pool.New(0)
		o.ownsPool = true
	}
	return o, nil
}

// Close releases the worker pool if the optimizer created it.
func (o *Optimizer) Close() {
	if o.ownsPool {
		o.pool.Close()
	}
}

// Optimize places the orders and returns the assembled result. The input
// slice is never modified.
//
// The only error besides an invalid order list is model.ErrInfeasible from
// the sequential strategy under the stop policy; the partial result is
// returned alongside it.
func (o *Optimizer) Optimize(orders []model.Order) (model.PlacementResult, error) {
	if err := model.ValidateOrders(orders); err != nil {
		return model.PlacementResult{}, err
	}

	start := time.Now()
	runID := uuid.NewString()
	log := o.logger.With(zap.String("run_id", runID))

	in := make([]model.Order, len(orders))
	for i, ord := range orders {
		in[i] = ord.Clear()
	}

	log.Info("planning started",
		zap.Int("orders", len(in)),
		zap.Int("roll_width", o.Settings.RollWidth),
		zap.Int("optimization_depth", o.Settings.OptimizationDepth),
		zap.String("strategy", string(o.Settings.Strategy)),
		zap.Bool("area_sort", o.Settings.UseAreaSort),
	)

	var (
		placed  []model.Order
		reports []model.ChunkReport
		err     error
	)
	switch o.Settings.Strategy {
	case model.StrategyParallel:
		placed, reports = o.planParallel(in, log)
	default:
		placed, reports, err = o.planSequential(in, log)
	}

	result := o.assemble(runID, in, placed, reports)
	elapsed := time.Since(start)

	outcome := "complete"
	switch {
	case err != nil:
		outcome = "error"
	case !result.Complete():
		outcome = "partial"
	}
	metrics.RecordPlan(string(o.Settings.Strategy), outcome, len(result.Placed), len(result.Unplaced), result.Utilization, elapsed)

	log.Info("planning finished",
		zap.Int("height", result.Height),
		zap.Float64("utilization", result.Utilization),
		zap.Int("placed", len(result.Placed)),
		zap.Int("unplaced", len(result.Unplaced)),
		zap.Int64("calls", result.Calls),
		zap.Duration("elapsed", elapsed),
	)
	return result, err
}

// planSequential searches chunk after chunk and stacks each one on top of
// everything accepted so far.
func (o *Optimizer) planSequential(in []model.Order, log *zap.Logger) ([]model.Order, []model.ChunkReport, error) {
	queue := append([]model.Order(nil), in...)
	var (
		placed  []model.Order
		reports []model.ChunkReport
	)
	offset := 0

	for idx := 0; len(queue) > 0; idx++ {
		n := min(o.Settings.OptimizationDepth, len(queue))
		chunk := o.prepareChunk(queue[:n])
		queue = queue[n:]

		res, calls := o.searchChunk(idx, chunk, log)
		report := model.ChunkReport{Index: idx, Size: len(chunk), Offset: offset, Calls: calls}

		if res != nil {
			placed = append(placed, translate(res.Placed, offset)...)
			offset = model.MaxY(placed)
			report.Height = res.Height
			report.Feasible = true
			reports = append(reports, report)
			continue
		}

		reports = append(reports, report)
		log.Warn("chunk infeasible",
			zap.Int("chunk", idx),
			zap.Int("offset", offset),
			zap.String("policy", string(o.Settings.UnplacedPolicy)),
		)

		switch o.Settings.UnplacedPolicy {
		case model.UnplacedDrop:
		case model.UnplacedFoldBack:
			var fit, unfit []model.Order
			for _, ord := range chunk {
				if ord.FitsWidth(o.Settings.RollWidth) {
					fit = append(fit, ord)
				} else {
					unfit = append(unfit, ord)
				}
			}
			if len(unfit) == 0 {
				break
			}
			log.Info("folding back chunk orders",
				zap.Int("chunk", idx),
				zap.Int("requeued", len(fit)),
				zap.Int("dropped", len(unfit)),
			)
			queue = append(fit, queue...)
		default:
			return placed, reports, fmt.Errorf("chunk %d at offset %d: %w", idx, offset, model.ErrInfeasible)
		}
	}
	return placed, reports, nil
}

// planParallel splits the orders into fixed chunks, searches all of them
// concurrently and stacks the feasible ones in chunk order.
func (o *Optimizer) planParallel(in []model.Order, log *zap.Logger) ([]model.Order, []model.ChunkReport) {
	var chunks [][]model.Order
	for i := 0; i < len(in); i += o.Settings.OptimizationDepth {
		end := min(i+o.Settings.OptimizationDepth, len(in))
		chunks = append(chunks, o.prepareChunk(in[i:end]))
	}

	results := make([]*model.BatchResult, len(chunks))
	calls := make([]int64, len(chunks))

	g := o.pool.NewGroup()
	for i := range chunks {
		g.Go(func() {
			results[i], calls[i] = o.searchChunk(i, chunks[i], log)
		})
	}
	if err := g.Wait(); err != nil {
		metrics.TaskFaultsTotal.Add(float64(g.Faults()))
		log.Error("chunk search failed", zap.Error(err))
	}

	var (
		placed  []model.Order
		reports []model.ChunkReport
	)
	offset := 0
	for i, res := range results {
		report := model.ChunkReport{Index: i, Size: len(chunks[i]), Offset: offset, Calls: calls[i]}
		if res == nil {
			log.Warn("chunk infeasible, skipped", zap.Int("chunk", i))
			reports = append(reports, report)
			continue
		}
		placed = append(placed, translate(res.Placed, offset)...)
		offset = model.MaxY(placed)
		report.Height = res.Height
		report.Feasible = true
		reports = append(reports, report)
	}
	return placed, reports
}

// prepareChunk copies the orders and sorts them by area, largest first,
// when the area heuristic is on. The sort is stable.
func (o *Optimizer) prepareChunk(orders []model.Order) []model.Order {
	chunk := append([]model.Order(nil), orders...)
	if o.Settings.UseAreaSort {
		sort.SliceStable(chunk, func(i, j int) bool {
			return chunk[i].Area() > chunk[j].Area()
		})
	}
	return chunk
}

func (o *Optimizer) searchChunk(idx int, chunk []model.Order, log *zap.Logger) (*model.BatchResult, int64) {
	start := time.Now()
	s := newSearcher(o.Settings.RollWidth, o.pool, log.With(zap.Int("chunk", idx)), o.progressEvery)
	res := s.run(chunk)

	calls := s.calls.Load()
	metrics.RecordChunk(res != nil, calls, s.faults.Load())

	fields := []zap.Field{
		zap.Int("chunk", idx),
		zap.Int("size", len(chunk)),
		zap.Int64("calls", calls),
		zap.Duration("elapsed", time.Since(start)),
	}
	if res != nil {
		fields = append(fields, zap.Int("height", res.Height))
	}
	log.Debug("chunk searched", fields...)
	return res, calls
}

// translate shifts chunk-local placements up by offset.
func translate(orders []model.Order, offset int) []model.Order {
	out := make([]model.Order, len(orders))
	for i, ord := range orders {
		out[i] = ord.Place(ord.X, ord.Y+offset, ord.Rotated)
	}
	return out
}

// assemble builds the global result. Every input order shows up exactly
// once, either placed or reset in Unplaced.
func (o *Optimizer) assemble(runID string, in, placed []model.Order, reports []model.ChunkReport) model.PlacementResult {
	placedIDs := make(map[int]bool, len(placed))
	for _, p := range placed {
		placedIDs[p.ID] = true
	}
	var unplaced []model.Order
	for _, ord := range in {
		if !placedIDs[ord.ID] {
			unplaced = append(unplaced, ord.Clear())
		}
	}

	var calls int64
	for _, r := range reports {
		calls += r.Calls
	}

	height := model.MaxY(placed)
	return model.PlacementResult{
		RunID:       runID,
		Placed:      placed,
		Unplaced:    unplaced,
		Anchors:     FinalAnchors(placed, o.Settings.RollWidth),
		Height:      height,
		Utilization: model.Utilization(placed, o.Settings.RollWidth, height),
		Chunks:      reports,
		Calls:       calls,
	}
}
