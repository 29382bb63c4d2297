package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/RollCut/internal/model"
)

func TestBuildDefaultScenarios(t *testing.T) {
	base := testSettings(100, 6)
	scenarios := BuildDefaultScenarios(base)

	require.Len(t, scenarios, 4)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, model.StrategyParallel, scenarios[1].Settings.Strategy)
	assert.False(t, scenarios[2].Settings.UseAreaSort)
	assert.Equal(t, "Input Order", scenarios[2].Name)
	assert.Equal(t, 3, scenarios[3].Settings.OptimizationDepth)
	assert.Equal(t, "Depth 3 (half)", scenarios[3].Name)
}

func TestBuildDefaultScenarios_DepthOne(t *testing.T) {
	base := testSettings(100, 1)
	base.Strategy = model.StrategyParallel
	base.UseAreaSort = false
	scenarios := BuildDefaultScenarios(base)

	require.Len(t, scenarios, 3)
	assert.Equal(t, "Sequential Chunks", scenarios[1].Name)
	assert.Equal(t, "Area Sorted", scenarios[2].Name)
}

func TestCompareScenarios(t *testing.T) {
	orders := []model.Order{
		model.NewOrder(1, 50, 50, ""),
		model.NewOrder(2, 50, 50, ""),
		model.NewOrder(3, 30, 20, ""),
	}
	results, err := CompareScenarios(BuildDefaultScenarios(testSettings(100, 2)), orders)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for _, r := range results {
		assert.NoError(t, r.Err, r.Scenario.Name)
		assert.Equal(t, 3, r.PlacedCount, r.Scenario.Name)
		assert.Equal(t, r.Result.Height, r.Height)
		assert.Greater(t, r.Utilization, 0.0)
	}
	assert.GreaterOrEqual(t, BestScenario(results), 0)
}

func TestCompareScenarios_KeepsInfeasibleRuns(t *testing.T) {
	orders := []model.Order{model.NewOrder(1, 50, 50, ""), model.NewOrder(2, 10, 10, "")}
	scenarios := []ComparisonScenario{
		{Name: "stop", Settings: testSettings(40, 1)},
	}
	drop := testSettings(40, 1)
	drop.UnplacedPolicy = model.UnplacedDrop
	scenarios = append(scenarios, ComparisonScenario{Name: "drop", Settings: drop})

	results, err := CompareScenarios(scenarios, orders)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, model.ErrInfeasible)
	assert.Equal(t, 0, results[0].PlacedCount)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, 1, results[1].PlacedCount)
	assert.Equal(t, 1, BestScenario(results))
}

func TestCompareScenarios_InvalidSettings(t *testing.T) {
	_, err := CompareScenarios([]ComparisonScenario{{Name: "bad", Settings: testSettings(0, 1)}}, nil)
	assert.ErrorIs(t, err, model.ErrInvalidRollWidth)
}

func TestBestScenario_Empty(t *testing.T) {
	assert.Equal(t, -1, BestScenario(nil))
}
