package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/RollCut/internal/model"
)

const sampleInput = `Spring collection, roll 3
1200 5
// width, height, id, description
400, 300, 1, Shirt front
400,300,2,Shirt back
250 600 3 Sleeve left

250	600	4	Sleeve right
`

func TestParseInput(t *testing.T) {
	data, err := ParseInput(strings.NewReader(sampleInput))
	require.NoError(t, err)

	assert.Equal(t, "Spring collection, roll 3", data.Description)
	assert.Equal(t, 1200, data.RollWidth)
	assert.Equal(t, 5, data.OptimizationDepth)
	assert.Empty(t, data.Warnings)

	require.Len(t, data.Orders, 4)
	assert.Equal(t, model.NewOrder(1, 400, 300, "Shirt front"), data.Orders[0])
	assert.Equal(t, model.NewOrder(2, 400, 300, "Shirt back"), data.Orders[1])
	assert.Equal(t, model.NewOrder(3, 250, 600, "Sleeve left"), data.Orders[2])
	assert.Equal(t, "Sleeve right", data.Orders[3].Label)
}

func TestParseInput_SkipsBadLinesWithWarnings(t *testing.T) {
	input := "desc\n100 3\n10, 20, 1, ok\n10, 20, x, bad id\n10 20 3\n0 5 4 zero\n10 10 1 dup\n"
	data, err := ParseInput(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, data.Orders, 1)
	require.Len(t, data.Warnings, 4)
	assert.Contains(t, data.Warnings[0], "Line 4")
	assert.Contains(t, data.Warnings[0], "invalid id")
	assert.Contains(t, data.Warnings[1], "not enough fields")
	assert.Contains(t, data.Warnings[2], "must be positive")
	assert.Contains(t, data.Warnings[3], "duplicate order id 1")
}

func TestParseInput_HeaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no config", "just a description\n"},
		{"one number", "desc\n100\n"},
		{"bad width", "desc\nwide 3\n"},
		{"bad depth", "desc\n100 deep\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInput(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestParseInput_NoOrders(t *testing.T) {
	data, err := ParseInput(strings.NewReader("empty job\n500 2\n"))
	require.NoError(t, err)
	assert.Empty(t, data.Orders)
	assert.Equal(t, 500, data.RollWidth)
}

func TestReadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.in")
	require.NoError(t, os.WriteFile(path, []byte(sampleInput), 0644))

	data, err := ReadInput(path)
	require.NoError(t, err)
	assert.Len(t, data.Orders, 4)

	_, err = ReadInput(filepath.Join(t.TempDir(), "missing.in"))
	assert.Error(t, err)
}

func TestInputData_Settings(t *testing.T) {
	data := InputData{RollWidth: 1200, OptimizationDepth: 5}
	base := model.DefaultPlanSettings()
	base.Strategy = model.StrategyParallel

	s := data.Settings(base)
	assert.Equal(t, 1200, s.RollWidth)
	assert.Equal(t, 5, s.OptimizationDepth)
	assert.Equal(t, model.StrategyParallel, s.Strategy)
}
