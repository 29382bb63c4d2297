// Package project saves finished plans as JSON so they can be reopened,
// re-exported or compared later.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/RollCut/internal/model"
)

// FormatVersion is written into every saved plan.
const FormatVersion = "1.0.0"

// ErrInvalidPlanFile is returned for files that parse as JSON but are not
// saved plans.
var ErrInvalidPlanFile = errors.New("invalid plan file")

// SavedPlan is the on-disk form of a planning run: what was asked for and
// what came out.
type SavedPlan struct {
	Version     string                `json:"version"`
	CreatedAt   string                `json:"created_at"`
	Description string                `json:"description"`
	Settings    model.PlanSettings    `json:"settings"`
	Orders      []model.Order         `json:"orders"`
	Result      model.PlacementResult `json:"result"`
}

// NewSavedPlan stamps a plan with the current format version and time.
func NewSavedPlan(description string, settings model.PlanSettings, orders []model.Order, result model.PlacementResult) SavedPlan {
	return SavedPlan{
		Version:     FormatVersion,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Description: description,
		Settings:    settings,
		Orders:      orders,
		Result:      result,
	}
}

// SavePlan writes the plan to path, creating missing parent directories.
func SavePlan(path string, plan SavedPlan) error {
	if plan.Version == "" {
		plan.Version = FormatVersion
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create plan directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}

// LoadPlan reads a plan written by SavePlan.
func LoadPlan(path string) (SavedPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SavedPlan{}, fmt.Errorf("failed to read plan file: %w", err)
	}
	var plan SavedPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return SavedPlan{}, fmt.Errorf("failed to parse plan file: %w", err)
	}
	if plan.Version == "" {
		return SavedPlan{}, fmt.Errorf("%w: missing version field", ErrInvalidPlanFile)
	}
	if plan.Settings.RollWidth <= 0 {
		return SavedPlan{}, fmt.Errorf("%w: missing roll width", ErrInvalidPlanFile)
	}
	// Keep empty lists non-nil for callers that range and re-save
	if plan.Orders == nil {
		plan.Orders = []model.Order{}
	}
	if plan.Result.Unplaced == nil {
		plan.Result.Unplaced = []model.Order{}
	}
	return plan, nil
}
