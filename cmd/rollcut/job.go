package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/RollCut/internal/engine"
	"github.com/piwi3910/RollCut/internal/importer"
	"github.com/piwi3910/RollCut/internal/model"
	"github.com/piwi3910/RollCut/internal/pool"
)

// jobFlags are the planning flags shared by plan and compare.
type jobFlags struct {
	input       string
	description string
	rollWidth   int
	depth       int
	strategy    string
	areaSort    bool
	policy      string
	workers     int
}

func (f *jobFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.input, "input", "i", "", "order list (.in, .csv, .xlsx, .dxf) instead of <base>.in")
	fl.StringVarP(&f.description, "description", "d", "", "job description (default from the order file)")
	fl.IntVarP(&f.rollWidth, "roll-width", "w", 0, "roll width in mm")
	fl.IntVar(&f.depth, "depth", 0, "optimization depth, orders per chunk")
	fl.StringVar(&f.strategy, "strategy", "", "chunk strategy (sequential, parallel)")
	fl.BoolVar(&f.areaSort, "area-sort", true, "sort each chunk by area, largest first")
	fl.StringVar(&f.policy, "unplaced", "", "infeasible chunk policy (stop, drop, foldback)")
	fl.IntVar(&f.workers, "workers", 0, "worker goroutines (default from config, 0 = one per CPU)")
}

// job is a loaded order list with the settings to plan it with.
type job struct {
	base        string
	description string
	settings    model.PlanSettings
	orders      []model.Order
}

// loadJob reads the orders for base and resolves the settings. Precedence,
// lowest first: config, the header of a .in file, command line flags.
func (c *cli) loadJob(cmd *cobra.Command, base string, f *jobFlags) (job, error) {
	settings, err := c.cfg.PlanSettings()
	if err != nil {
		return job{}, err
	}
	j := job{base: base}

	input := f.input
	if input == "" {
		input = base + ".in"
	}

	if strings.EqualFold(filepath.Ext(input), ".in") {
		data, err := importer.ReadInput(input)
		if err != nil {
			return job{}, err
		}
		for _, w := range data.Warnings {
			c.logger.Warn("order file", zap.String("warning", w))
		}
		settings = data.Settings(settings)
		j.description = data.Description
		j.orders = data.Orders
	} else {
		res := importer.ImportFile(input)
		for _, w := range res.Warnings {
			c.logger.Warn("order import", zap.String("warning", w))
		}
		for _, e := range res.Errors {
			c.logger.Error("order import", zap.String("error", e))
		}
		if len(res.Orders) == 0 {
			if len(res.Errors) > 0 {
				return job{}, fmt.Errorf("import %s: %s", input, res.Errors[0])
			}
			return job{}, fmt.Errorf("import %s: no orders found", input)
		}
		j.orders = res.Orders
		j.description = filepath.Base(base)
	}

	fl := cmd.Flags()
	if f.description != "" {
		j.description = f.description
	}
	if fl.Changed("roll-width") {
		settings.RollWidth = f.rollWidth
	}
	if fl.Changed("depth") {
		settings.OptimizationDepth = f.depth
	}
	if fl.Changed("area-sort") {
		settings.UseAreaSort = f.areaSort
	}
	if fl.Changed("strategy") {
		if settings.Strategy, err = model.ParseStrategy(f.strategy); err != nil {
			return job{}, err
		}
	}
	if fl.Changed("unplaced") {
		if settings.UnplacedPolicy, err = model.ParseUnplacedPolicy(f.policy); err != nil {
			return job{}, err
		}
	}
	if err := settings.Validate(); err != nil {
		return job{}, err
	}
	j.settings = settings.Normalized()
	return j, nil
}

// newPool sizes the worker pool from the flag or the config.
func (c *cli) newPool(f *jobFlags) *pool.Pool {
	workers := c.cfg.Plan.Workers
	if f.workers > 0 {
		workers = f.workers
	}
	return pool.New(workers)
}

// engineOptions returns the optimizer options every command uses.
func (c *cli) engineOptions(p *pool.Pool) []engine.Option {
	return []engine.Option{
		engine.WithPool(p),
		engine.WithLogger(c.logger),
		engine.WithProgressInterval(c.cfg.Plan.ProgressInterval),
	}
}
