package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/RollCut/internal/engine"
)

func newCompareCmd(c *cli) *cobra.Command {
	f := &jobFlags{}
	cmd := &cobra.Command{
		Use:   "compare <base>",
		Short: "Plan a job under several settings and compare the results",
		Long: `Plan the same orders with the current settings, the other chunk
strategy, the area sort flipped and half the optimization depth, then print
one line per scenario. The best scenario places the most orders on the
shortest roll.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompare(cmd, args[0], f)
		},
	}
	f.register(cmd)
	return cmd
}

func (c *cli) runCompare(cmd *cobra.Command, base string, f *jobFlags) error {
	j, err := c.loadJob(cmd, base, f)
	if err != nil {
		return err
	}

	p := c.newPool(f)
	defer p.Close()

	results, err := engine.CompareScenarios(engine.BuildDefaultScenarios(j.settings), j.orders, c.engineOptions(p)...)
	if err != nil {
		return err
	}
	best := engine.BestScenario(results)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\tSCENARIO\tLENGTH\tUTILIZATION\tPLACED\tUNPLACED\tCALLS\tTIME\n")
	for i, r := range results {
		mark := ""
		if i == best {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.1fcm\t%.2f%%\t%d\t%d\t%d\t%s\n",
			mark, r.Scenario.Name, float64(r.Height)/10, r.Utilization,
			r.PlacedCount, r.UnplacedCount, r.Calls, r.Elapsed.Round(time.Millisecond))
	}
	return tw.Flush()
}
