package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/RollCut/internal/engine"
	"github.com/piwi3910/RollCut/internal/export"
	"github.com/piwi3910/RollCut/internal/model"
	"github.com/piwi3910/RollCut/internal/project"
)

// planFlags select the outputs of the plan command on top of the config.
type planFlags struct {
	jobFlags
	pdf        bool
	labels     bool
	xlsx       bool
	json       bool
	runGnuplot bool
}

func newPlanCmd(c *cli) *cobra.Command {
	f := &planFlags{}
	cmd := &cobra.Command{
		Use:   "plan <base>",
		Short: "Plan the orders of <base>.in and write <base>.out and <base>.gnu",
		Long: `Plan the orders of a job onto the roll.

The orders are read from <base>.in unless --input names another order list.
The text report goes to <base>.out and the gnuplot script to <base>.gnu
(rendering <base>.png when gnuplot runs). --pdf, --labels, --xlsx and --json
add <base>.pdf, <base>-labels.pdf, <base>.xlsx and <base>.json.

Examples:
  # Plan a job file
  rollcut plan jobs/spring

  # Plan a CSV order list on a 1400 mm roll, in parallel chunks
  rollcut plan jobs/summer --input orders.csv --roll-width 1400 --strategy parallel`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(cmd, args[0], f)
		},
	}
	f.register(cmd)
	fl := cmd.Flags()
	fl.BoolVar(&f.pdf, "pdf", false, "write a PDF layout report")
	fl.BoolVar(&f.labels, "labels", false, "write QR-coded order labels")
	fl.BoolVar(&f.xlsx, "xlsx", false, "write an Excel report")
	fl.BoolVar(&f.json, "json", false, "save the plan as JSON")
	fl.BoolVar(&f.runGnuplot, "run-gnuplot", false, "render the layout with gnuplot")
	return cmd
}

func (c *cli) runPlan(cmd *cobra.Command, base string, f *planFlags) error {
	start := time.Now()

	j, err := c.loadJob(cmd, base, &f.jobFlags)
	if err != nil {
		return err
	}

	p := c.newPool(&f.jobFlags)
	defer p.Close()

	opt, err := engine.New(j.settings, c.engineOptions(p)...)
	if err != nil {
		return err
	}
	defer opt.Close()

	result, planErr := opt.Optimize(j.orders)
	spawned, inline := p.Stats()
	c.logger.Debug("worker pool",
		zap.Int("workers", p.Workers()),
		zap.Int64("spawned", spawned),
		zap.Int64("inline", inline),
	)
	if planErr != nil && !errors.Is(planErr, model.ErrInfeasible) {
		return planErr
	}
	if planErr != nil {
		c.logger.Warn("plan incomplete", zap.Error(planErr))
	}

	if err := c.writeOutputs(cmd.Context(), j, result, f); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d of %d orders placed, length %.1fcm, utilization %.2f%%\n",
		j.description, len(result.Placed), len(j.orders), float64(result.Height)/10, result.Utilization)
	fmt.Fprintf(out, "Elapsed: %s\n", time.Since(start).Round(time.Millisecond))

	return planErr
}

// writeOutputs writes the report files for a finished plan.
func (c *cli) writeOutputs(ctx context.Context, j job, result model.PlacementResult, f *planFlags) error {
	exp := c.cfg.Export
	rep := export.Report{Description: j.description, RollWidth: j.settings.RollWidth, Result: result}

	if err := export.WriteReportFile(j.base+".out", rep); err != nil {
		return err
	}
	if err := export.WriteGnuplotFile(j.base+".gnu", rep, j.base+".png"); err != nil {
		return err
	}
	if f.runGnuplot || exp.RunGnuplot {
		if ctx == nil {
			ctx = context.Background()
		}
		// A missing gnuplot is not fatal, the script stays behind
		if out, err := export.RunGnuplot(ctx, exp.Gnuplot, j.base+".gnu"); err != nil {
			c.logger.Warn("gnuplot failed", zap.Error(err), zap.String("output", out))
		}
	}

	if len(result.Placed) > 0 {
		if f.pdf || exp.PDF {
			if err := export.ExportPDF(j.base+".pdf", rep); err != nil {
				return fmt.Errorf("pdf report: %w", err)
			}
		}
		if f.labels || exp.Labels {
			if err := export.ExportLabels(j.base+"-labels.pdf", result); err != nil {
				return fmt.Errorf("labels: %w", err)
			}
		}
	}
	if f.xlsx || exp.XLSX {
		if err := export.ExportXLSX(j.base+".xlsx", rep); err != nil {
			return fmt.Errorf("excel report: %w", err)
		}
	}
	if f.json || exp.JSON {
		plan := project.NewSavedPlan(j.description, j.settings, j.orders, result)
		if err := project.SavePlan(j.base+".json", plan); err != nil {
			return err
		}
	}
	return nil
}
