package server

import (
	"fmt"

	"github.com/piwi3910/RollCut/internal/model"
)

// OrderInput is one order in a request. Ids are assigned in request order
// when left out.
type OrderInput struct {
	ID     int    `json:"id"`
	Label  string `json:"label"`
	Width  int    `json:"width" binding:"required"`
	Height int    `json:"height" binding:"required"`
}

// PlanRequest is the body of /api/plan and /api/compare. Zero settings fall
// back to the server defaults.
type PlanRequest struct {
	Description       string       `json:"description"`
	RollWidth         int          `json:"roll_width"`
	OptimizationDepth int          `json:"optimization_depth"`
	Strategy          string       `json:"strategy"`
	AreaSort          *bool        `json:"area_sort"`
	UnplacedPolicy    string       `json:"unplaced_policy"`
	Orders            []OrderInput `json:"orders" binding:"required,dive"`
}

// PlanResponse is returned by /api/plan. Error is set, together with the
// partial result, when the plan stopped at an infeasible chunk.
type PlanResponse struct {
	Description string                `json:"description"`
	Settings    model.PlanSettings    `json:"settings"`
	Result      model.PlacementResult `json:"result"`
	Error       string                `json:"error,omitempty"`
}

// ScenarioResult summarizes one scenario of a comparison.
type ScenarioResult struct {
	Name          string             `json:"name"`
	Settings      model.PlanSettings `json:"settings"`
	Height        int                `json:"height"`
	Utilization   float64            `json:"utilization"`
	PlacedCount   int                `json:"placed"`
	UnplacedCount int                `json:"unplaced"`
	Calls         int64              `json:"calls"`
	ElapsedMS     int64              `json:"elapsed_ms"`
	Error         string             `json:"error,omitempty"`
}

// CompareResponse is returned by /api/compare. Best indexes Scenarios.
type CompareResponse struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Best      int              `json:"best"`
}

func (r PlanRequest) settings(base model.PlanSettings) (model.PlanSettings, error) {
	s := base
	if r.RollWidth != 0 {
		s.RollWidth = r.RollWidth
	}
	if r.OptimizationDepth != 0 {
		s.OptimizationDepth = r.OptimizationDepth
	}
	if r.AreaSort != nil {
		s.UseAreaSort = *r.AreaSort
	}
	if r.Strategy != "" {
		strategy, err := model.ParseStrategy(r.Strategy)
		if err != nil {
			return s, err
		}
		s.Strategy = strategy
	}
	if r.UnplacedPolicy != "" {
		policy, err := model.ParseUnplacedPolicy(r.UnplacedPolicy)
		if err != nil {
			return s, err
		}
		s.UnplacedPolicy = policy
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s.Normalized(), nil
}

func (r PlanRequest) orders() []model.Order {
	next := 1
	for _, in := range r.Orders {
		next = max(next, in.ID+1)
	}
	orders := make([]model.Order, 0, len(r.Orders))
	for _, in := range r.Orders {
		id := in.ID
		if id == 0 {
			id = next
			next++
		}
		label := in.Label
		if label == "" {
			label = fmt.Sprintf("Order %d", id)
		}
		orders = append(orders, model.NewOrder(id, in.Width, in.Height, label))
	}
	return orders
}
