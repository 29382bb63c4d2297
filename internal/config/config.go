// Package config loads the RollCut configuration. Values come from built-in
// defaults, an optional YAML file and ROLLCUT_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/piwi3910/RollCut/internal/logging"
	"github.com/piwi3910/RollCut/internal/model"
)

const (
	// EnvPrefix starts every environment override, e.g. ROLLCUT_PLAN_ROLL_WIDTH.
	EnvPrefix = "ROLLCUT_"

	maxConfigFileSize = 1024 * 1024
)

const defaultYAML = `
plan:
  roll_width: 1000
  optimization_depth: 6
  strategy: sequential
  area_sort: true
  unplaced_policy: stop
  workers: 0
  progress_interval: 50000000
log:
  level: info
  format: console
server:
  addr: ":8080"
  max_orders: 500
export:
  gnuplot: gnuplot
  run_gnuplot: false
  pdf: false
  labels: false
  xlsx: false
  json: false
`

// Config is the complete application configuration.
type Config struct {
	Plan   PlanConfig     `koanf:"plan"`
	Log    logging.Config `koanf:"log"`
	Server ServerConfig   `koanf:"server"`
	Export ExportConfig   `koanf:"export"`
}

// PlanConfig holds the planner defaults.
type PlanConfig struct {
	RollWidth         int    `koanf:"roll_width"`
	OptimizationDepth int    `koanf:"optimization_depth"`
	Strategy          string `koanf:"strategy"`
	AreaSort          bool   `koanf:"area_sort"`
	UnplacedPolicy    string `koanf:"unplaced_policy"`
	Workers           int    `koanf:"workers"` // 0 means one per CPU
	ProgressInterval  int64  `koanf:"progress_interval"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr      string `koanf:"addr"`
	MaxOrders int    `koanf:"max_orders"` // per request, 0 for no limit
}

// ExportConfig selects the files written next to the text report.
type ExportConfig struct {
	Gnuplot    string `koanf:"gnuplot"`
	RunGnuplot bool   `koanf:"run_gnuplot"`
	PDF        bool   `koanf:"pdf"`
	Labels     bool   `koanf:"labels"`
	XLSX       bool   `koanf:"xlsx"`
	JSON       bool   `koanf:"json"`
}

// DefaultDir returns the per-user configuration directory, ~/.rollcut.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".rollcut")
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := load(nil, nil)
	if err != nil {
		panic(fmt.Sprintf("built-in configuration: %v", err))
	}
	return cfg
}

// Load reads the configuration. An empty path uses DefaultPath and tolerates
// a missing file; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	content, err := readConfigFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			content = nil
		} else {
			return nil, err
		}
	}

	cfg, err := load(content, env.Provider(EnvPrefix, ".", envKey))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func load(content []byte, envProvider koanf.Provider) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaultYAML)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if content != nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if envProvider != nil {
		if err := k.Load(envProvider, nil); err != nil {
			return nil, fmt.Errorf("failed to load environment variables: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// readConfigFile reads a YAML file, rejecting anything larger than 1MB.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// envKey maps ROLLCUT_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, found := strings.Cut(lower, "_")
	if !found {
		return lower
	}
	return section + "." + field
}

// PlanSettings converts the plan section into planner settings. Strategy
// and policy names are parsed, so aliases such as "par" are accepted.
func (c *Config) PlanSettings() (model.PlanSettings, error) {
	s := model.PlanSettings{
		RollWidth:         c.Plan.RollWidth,
		OptimizationDepth: c.Plan.OptimizationDepth,
		UseAreaSort:       c.Plan.AreaSort,
	}
	if c.Plan.Strategy != "" {
		strategy, err := model.ParseStrategy(c.Plan.Strategy)
		if err != nil {
			return s, err
		}
		s.Strategy = strategy
	}
	if c.Plan.UnplacedPolicy != "" {
		policy, err := model.ParseUnplacedPolicy(c.Plan.UnplacedPolicy)
		if err != nil {
			return s, err
		}
		s.UnplacedPolicy = policy
	}
	return s.Normalized(), s.Validate()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := c.PlanSettings(); err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	if c.Plan.Workers < 0 {
		return fmt.Errorf("plan: workers must be >= 0, got %d", c.Plan.Workers)
	}
	if c.Plan.ProgressInterval < 0 {
		return fmt.Errorf("plan: progress interval must be >= 0, got %d", c.Plan.ProgressInterval)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if c.Server.Addr == "" {
		return errors.New("server: addr is required")
	}
	if c.Server.MaxOrders < 0 {
		return fmt.Errorf("server: max orders must be >= 0, got %d", c.Server.MaxOrders)
	}
	return nil
}
