package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/piwi3910/RollCut/internal/pool"
	"github.com/piwi3910/RollCut/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planning API over HTTP",
		Long: `Serve the planner over HTTP until interrupted.

Endpoints:
  GET  /healthz      liveness probe
  POST /api/plan     plan a list of orders
  POST /api/compare  compare the default scenarios
  GET  /metrics      Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			settings, err := c.cfg.PlanSettings()
			if err != nil {
				return err
			}

			p := pool.New(c.cfg.Plan.Workers)
			defer p.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(c.cfg.Server, settings, p, c.logger).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
