package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/piwi3910/RollCut/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.PlanSettings
}

// ComparisonResult holds the planning result and computed statistics for a
// single scenario.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Result        model.PlacementResult
	Err           error
	Height        int
	Utilization   float64
	PlacedCount   int
	UnplacedCount int
	Calls         int64
	Elapsed       time.Duration
}

// CompareScenarios plans the same orders under each scenario and returns the
// results in scenario order. An infeasible sequential run still yields its
// partial result; Err carries the reason. Invalid settings abort the whole
// comparison.
func CompareScenarios(scenarios []ComparisonScenario, orders []model.Order, opts ...Option) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		opt, err := New(scenario.Settings, opts...)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		start := time.Now()
		result, err := opt.Optimize(orders)
		elapsed := time.Since(start)
		opt.Close()

		if err != nil && !errors.Is(err, model.ErrInfeasible) {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		results = append(results, ComparisonResult{
			Scenario:      scenario,
			Result:        result,
			Err:           err,
			Height:        result.Height,
			Utilization:   result.Utilization,
			PlacedCount:   len(result.Placed),
			UnplacedCount: len(result.Unplaced),
			Calls:         result.Calls,
			Elapsed:       elapsed,
		})
	}

	return results, nil
}

// BestScenario returns the index of the result with the lowest height among
// those that placed the most orders, or -1 for an empty slice.
func BestScenario(results []ComparisonResult) int {
	best := -1
	for i, r := range results {
		if best < 0 {
			best = i
			continue
		}
		b := results[best]
		if r.PlacedCount > b.PlacedCount || (r.PlacedCount == b.PlacedCount && r.Height < b.Height) {
			best = i
		}
	}
	return best
}

// BuildDefaultScenarios generates comparison scenarios from the current
// settings, varying the batching strategy and the area heuristic.
func BuildDefaultScenarios(base model.PlanSettings) []ComparisonScenario {
	base = base.Normalized()
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
	}

	// Scenario: the other batching strategy
	alt := base
	if base.Strategy == model.StrategySequential {
		alt.Strategy = model.StrategyParallel
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Parallel Chunks",
			Settings: alt,
		})
	} else {
		alt.Strategy = model.StrategySequential
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Sequential Chunks",
			Settings: alt,
		})
	}

	// Scenario: flip the area heuristic
	flip := base
	flip.UseAreaSort = !base.UseAreaSort
	name := "Input Order"
	if flip.UseAreaSort {
		name = "Area Sorted"
	}
	scenarios = append(scenarios, ComparisonScenario{
		Name:     name,
		Settings: flip,
	})

	// Scenario: half the optimization depth, faster and usually higher
	if base.OptimizationDepth > 1 {
		shallow := base
		shallow.OptimizationDepth = base.OptimizationDepth / 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Depth %d (half)", shallow.OptimizationDepth),
			Settings: shallow,
		})
	}

	return scenarios
}
