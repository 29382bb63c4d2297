// RollCut plans rectangular customer orders onto a roll of fixed width so
// that the used roll length is as short as possible.
//
// Build:
//
//	go build -o rollcut ./cmd/rollcut
//
// Usage:
//
//	rollcut plan jobs/spring            # reads jobs/spring.in, writes jobs/spring.out and .gnu
//	rollcut plan jobs/spring --pdf --labels --xlsx
//	rollcut plan jobs/summer --input orders.csv --roll-width 1400
//	rollcut compare jobs/spring
//	rollcut serve --addr :8080
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/RollCut/internal/config"
	"github.com/piwi3910/RollCut/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the state shared by all subcommands.
type cli struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "rollcut",
		Short: "Plan customer orders onto a roll with minimal length",
		Long: `rollcut places rectangular customer orders onto a roll of fixed width.
Orders are planned in chunks; every chunk is searched exhaustively for the
arrangement with the lowest height and the chunks are stacked along the roll.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logging.Sync(c.logger)
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.rollcut/config.yaml)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "", "log format (console, json)")

	root.AddCommand(newPlanCmd(c), newCompareCmd(c), newServeCmd(c), newVersionCmd())
	return root
}

// setup loads the configuration and builds the logger. Flags win over the
// config file and the environment.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Log.Format = c.logFormat
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rollcut %s\n", version)
		},
	}
}
