package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration, read from config.yaml and the environment
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Map struct {
		File           string `yaml:"file"`
		Format         string `yaml:"format"` // json, geojson or xml; empty infers from the extension
		SymmetricEdges *bool  `yaml:"symmetric_edges"`
	} `yaml:"map"`

	Navigation struct {
		StartNode     string     `yaml:"start_node"`
		Heading       Point      `yaml:"heading"`
		Turns         TurnConfig `yaml:",inline"`
		ArrivalRadius float64    `yaml:"arrival_radius"` // 0 accepts any distance
	} `yaml:"navigation"`

	Log LogConfig `yaml:"log"`
}

// LoadConfig reads the YAML config file, applies environment overrides and
// fills defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("error reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML: %w", err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	if err := config.Navigation.Turns.Validate(); err != nil {
		return nil, err
	}
	if config.Navigation.ArrivalRadius < 0 {
		return nil, fmt.Errorf("arrival_radius must not be negative: %.2f", config.Navigation.ArrivalRadius)
	}

	return &config, nil
}

// applyEnv overrides config values with NAV_* environment variables
func (c *Config) applyEnv() error {
	if v := os.Getenv("NAV_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("NAV_MAP_FILE"); v != "" {
		c.Map.File = v
	}
	if v := os.Getenv("NAV_START_NODE"); v != "" {
		c.Navigation.StartNode = v
	}
	if v := os.Getenv("NAV_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("NAV_SYMMETRIC_EDGES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NAV_SYMMETRIC_EDGES not a truthy value: %w", err)
		}
		c.Map.SymmetricEdges = &b
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Map.File == "" {
		c.Map.File = "map.json"
	}
	if c.Map.SymmetricEdges == nil {
		symmetric := true
		c.Map.SymmetricEdges = &symmetric
	}
	if c.Navigation.StartNode == "" {
		c.Navigation.StartNode = "GATE"
	}
	if c.Navigation.Heading == (Point{}) {
		// Facing into campus
		c.Navigation.Heading = Point{X: 0, Y: -1}
	}
	defaults := DefaultTurnConfig()
	if c.Navigation.Turns.ForwardThresholdDeg == 0 {
		c.Navigation.Turns.ForwardThresholdDeg = defaults.ForwardThresholdDeg
	}
	if c.Navigation.Turns.BackThresholdDeg == 0 {
		c.Navigation.Turns.BackThresholdDeg = defaults.BackThresholdDeg
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Log.FilePath == "" {
		c.Log.FilePath = "logs/navigator.log"
	}
}

// GraphOptions returns the graph build options from the map section
func (c *Config) GraphOptions() GraphOptions {
	return GraphOptions{SymmetricEdges: c.Map.SymmetricEdges == nil || *c.Map.SymmetricEdges}
}
