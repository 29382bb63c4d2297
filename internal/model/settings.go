package model

import (
	"errors"
	"fmt"
)

// Strategy selects how the order list is split and searched.
type Strategy string

const (
	// StrategySequential searches chunks one after the other, each stacked
	// on top of everything accepted so far.
	StrategySequential Strategy = "sequential"
	// StrategyParallel searches fixed chunks concurrently and stacks them in
	// chunk order once all are done.
	StrategyParallel Strategy = "parallel"
)

// UnplacedPolicy decides what the sequential strategy does with a chunk
// that has no feasible arrangement.
type UnplacedPolicy string

const (
	UnplacedStop     UnplacedPolicy = "stop"     // abort, every remaining order stays unplaced
	UnplacedDrop     UnplacedPolicy = "drop"     // give up on the chunk, continue with the next one
	UnplacedFoldBack UnplacedPolicy = "foldback" // drop orders wider than the roll, requeue the rest
)

// Configuration errors. They are wrapped in *ConfigError.
var (
	ErrInvalidRollWidth         = errors.New("roll width must be positive")
	ErrInvalidOptimizationDepth = errors.New("optimization depth must be positive")
	ErrInvalidStrategy          = errors.New("unknown batching strategy")
	ErrInvalidUnplacedPolicy    = errors.New("unknown unplaced policy")
	ErrInvalidOrder             = errors.New("order dimensions must be positive")
	ErrDuplicateOrderID         = errors.New("duplicate order id")
)

// ErrInfeasible reports that a chunk could not be arranged at all.
var ErrInfeasible = errors.New("no feasible placement for chunk")

// ConfigError reports an invalid planner setting or input order.
type ConfigError struct {
	Field string
	Value any
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// PlanSettings holds the planner configuration.
type PlanSettings struct {
	RollWidth         int            `json:"roll_width"`
	OptimizationDepth int            `json:"optimization_depth"` // max orders per chunk
	Strategy          Strategy       `json:"strategy"`
	UseAreaSort       bool           `json:"use_area_sort"` // sort each chunk by area, largest first
	UnplacedPolicy    UnplacedPolicy `json:"unplaced_policy"`
}

func DefaultPlanSettings() PlanSettings {
	return PlanSettings{
		RollWidth:         1000,
		OptimizationDepth: 6,
		Strategy:          StrategySequential,
		UseAreaSort:       true,
		UnplacedPolicy:    UnplacedStop,
	}
}

// Validate checks the settings. Empty strategy and policy mean the defaults.
func (s PlanSettings) Validate() error {
	if s.RollWidth <= 0 {
		return &ConfigError{Field: "roll width", Value: s.RollWidth, Err: ErrInvalidRollWidth}
	}
	if s.OptimizationDepth <= 0 {
		return &ConfigError{Field: "optimization depth", Value: s.OptimizationDepth, Err: ErrInvalidOptimizationDepth}
	}
	switch s.Strategy {
	case "", StrategySequential, StrategyParallel:
	default:
		return &ConfigError{Field: "strategy", Value: s.Strategy, Err: ErrInvalidStrategy}
	}
	switch s.UnplacedPolicy {
	case "", UnplacedStop, UnplacedDrop, UnplacedFoldBack:
	default:
		return &ConfigError{Field: "unplaced policy", Value: s.UnplacedPolicy, Err: ErrInvalidUnplacedPolicy}
	}
	return nil
}

// Normalized fills empty strategy and policy with their defaults.
func (s PlanSettings) Normalized() PlanSettings {
	if s.Strategy == "" {
		s.Strategy = StrategySequential
	}
	if s.UnplacedPolicy == "" {
		s.UnplacedPolicy = UnplacedStop
	}
	return s
}

// ParseStrategy converts a user supplied name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "sequential", "seq", "stacked":
		return StrategySequential, nil
	case "parallel", "par", "independent":
		return StrategyParallel, nil
	default:
		return "", &ConfigError{Field: "strategy", Value: name, Err: ErrInvalidStrategy}
	}
}

// ParseUnplacedPolicy converts a user supplied name into an UnplacedPolicy.
func ParseUnplacedPolicy(name string) (UnplacedPolicy, error) {
	switch UnplacedPolicy(name) {
	case UnplacedStop, UnplacedDrop, UnplacedFoldBack:
		return UnplacedPolicy(name), nil
	default:
		return "", &ConfigError{Field: "unplaced policy", Value: name, Err: ErrInvalidUnplacedPolicy}
	}
}

// ValidateOrders checks that every order has positive dimensions and a
// unique id.
func ValidateOrders(orders []Order) error {
	seen := make(map[int]bool, len(orders))
	for _, o := range orders {
		if o.Width <= 0 || o.Height <= 0 {
			return &ConfigError{Field: "order", Value: o.ID, Err: ErrInvalidOrder}
		}
		if seen[o.ID] {
			return &ConfigError{Field: "order", Value: o.ID, Err: ErrDuplicateOrderID}
		}
		seen[o.ID] = true
	}
	return nil
}
