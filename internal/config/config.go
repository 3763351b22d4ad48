// Package config loads and validates the crate configuration: which boards
// exist, how their channels map onto detector layers, and the per-layer
// voltage and current defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// BoardConfig describes one physical board and its channel layout.
type BoardConfig struct {
	Conet int `json:"conet" yaml:"conet"`
	Link  int `json:"link" yaml:"link"`
	// ChannelsByLayer maps a layer number (as a string key, matching the
	// wire format) to the board channel numbers belonging to that layer.
	ChannelsByLayer map[string][]int `json:"channels_by_layer" yaml:"channels_by_layer"`
	// Aliases names every channel on the board, indexed by channel number.
	Aliases []string `json:"aliases" yaml:"aliases"`
}

// Config is the top-level crate configuration.
type Config struct {
	// Boards maps a board's VME address to its layout.
	Boards map[string]BoardConfig `json:"board_info" yaml:"board_info"`
	// DefaultVoltages holds the nominal operating voltage per layer.
	DefaultVoltages map[string]float64 `json:"default_voltages" yaml:"default_voltages"`
	// DefaultMaxCurrent holds the current limit per layer, in microamps.
	DefaultMaxCurrent map[string]float64 `json:"default_max_current" yaml:"default_max_current"`
}

// Load reads configuration from a JSON or YAML file, chosen by extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch ext := filepath.Ext(path); ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported config format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural invariants of the configuration.
func (c *Config) Validate() error {
	if len(c.Boards) == 0 {
		return fmt.Errorf("config: board_info is missing or empty")
	}
	if c.DefaultVoltages == nil {
		return fmt.Errorf("config: default_voltages is missing")
	}
	if c.DefaultMaxCurrent == nil {
		return fmt.Errorf("config: default_max_current is missing")
	}
	for address, b := range c.Boards {
		if b.ChannelsByLayer == nil {
			return fmt.Errorf("config: board %s: channels_by_layer is missing", address)
		}
		if b.Aliases == nil {
			return fmt.Errorf("config: board %s: aliases is missing", address)
		}
		for layer, channels := range b.ChannelsByLayer {
			if _, err := strconv.Atoi(layer); err != nil {
				return fmt.Errorf("config: board %s: layer key %q is not a number", address, layer)
			}
			for _, ch := range channels {
				if ch < 0 || ch >= len(b.Aliases) {
					return fmt.Errorf("config: board %s: channel %d has no alias", address, ch)
				}
			}
		}
	}
	return nil
}

// DefaultVoltage returns the nominal voltage for a layer, 0 when the layer
// has no configured default.
func (c *Config) DefaultVoltage(layer int) float64 {
	return c.DefaultVoltages[strconv.Itoa(layer)]
}

// MaxDefaultVoltage returns the largest configured per-layer default voltage.
// Ramp speeds are scaled against it so all layers finish ramping together.
func (c *Config) MaxDefaultVoltage() float64 {
	var max float64
	for _, v := range c.DefaultVoltages {
		if v > max {
			max = v
		}
	}
	return max
}

// MaxCurrent returns the current limit for a layer, falling back to 50 uA
// when the layer has no configured limit.
func (c *Config) MaxCurrent(layer int) float64 {
	if v, ok := c.DefaultMaxCurrent[strconv.Itoa(layer)]; ok {
		return v
	}
	return 50.0
}

// ChannelLayout is one configured channel with its board placement.
type ChannelLayout struct {
	Board   string
	Conet   int
	Link    int
	Channel int
	Layer   int
	Alias   string
}

// Channels flattens the configuration into one entry per configured channel.
func (c *Config) Channels() []ChannelLayout {
	var out []ChannelLayout
	for address, b := range c.Boards {
		for layerKey, channels := range b.ChannelsByLayer {
			layer, _ := strconv.Atoi(layerKey)
			for _, ch := range channels {
				out = append(out, ChannelLayout{
					Board:   address,
					Conet:   b.Conet,
					Link:    b.Link,
					Channel: ch,
					Layer:   layer,
					Alias:   b.Aliases[ch],
				})
			}
		}
	}
	return out
}
