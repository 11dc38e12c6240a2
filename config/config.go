// Package config loads the planner's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Mirroar/hivemind-sub000/layout"
	"github.com/Mirroar/hivemind-sub000/rules"
)

type Config struct {
	Socket    string         `yaml:"socket"`
	LogLevel  string         `yaml:"log_level"`
	Planner   layout.Options `yaml:"planner"`
	Reconcile rules.Options  `yaml:"reconcile"`
	Safety    Safety         `yaml:"safety"`
	Store     Store          `yaml:"store"`
}

type Safety struct {
	Range        int `yaml:"range"`
	RecheckTicks int `yaml:"recheck_ticks"`
	MaxIntelAge  int `yaml:"max_intel_age"`
}

// Store selects the plan store backend: "memory" or "sqlite".
type Store struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

func Default() Config {
	return Config{
		Socket:    "/tmp/hivemind.sock",
		LogLevel:  "info",
		Planner:   layout.DefaultOptions(),
		Reconcile: rules.DefaultOptions(),
		Safety:    Safety{Range: 3, RecheckTicks: 500, MaxIntelAge: 5000},
		Store:     Store{Driver: "memory"},
	}
}

// Load reads path over the defaults, so a partial file only overrides
// what it names.
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate clamps numeric settings and rejects settings that cannot be
// clamped.
func (c *Config) Validate() error {
	c.Planner.Validate()
	c.Reconcile.Validate()
	c.Safety.Range = max(c.Safety.Range, 1)
	c.Safety.RecheckTicks = max(c.Safety.RecheckTicks, 1)
	c.Safety.MaxIntelAge = max(c.Safety.MaxIntelAge, 0)
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store: sqlite driver needs a path")
		}
	default:
		return fmt.Errorf("store: unknown driver %q", c.Store.Driver)
	}
	if c.Socket == "" {
		return fmt.Errorf("socket path is empty")
	}
	return nil
}
