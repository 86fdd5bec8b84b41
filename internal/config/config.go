package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/shoeaxis/internal/axis"
	"github.com/lox/shoeaxis/internal/count"
	"github.com/lox/shoeaxis/internal/montecarlo"
)

// Config represents the complete configuration file
type Config struct {
	Engine EngineSettings
	Axis   AxisSettings
	Count  CountSettings
	Server ServerSettings
	Log    LogSettings
}

// EngineSettings controls the shoe and the estimator
type EngineSettings struct {
	Decks   int   `hcl:"decks,optional"`
	Trials  int   `hcl:"trials,optional"`
	Workers int   `hcl:"workers,optional"`
	Seed    int64 `hcl:"seed,optional"`
}

// AxisSettings tunes the scorer
type AxisSettings struct {
	DeltaScale        float64 `hcl:"delta_scale,optional"`
	CountScale        float64 `hcl:"count_scale,optional"`
	ProbabilityWeight float64 `hcl:"probability_weight,optional"`
	CountWeight       float64 `hcl:"count_weight,optional"`
	StreakWindow      int     `hcl:"streak_window,optional"`
	StreakStep        float64 `hcl:"streak_step,optional"`
	StreakCap         float64 `hcl:"streak_cap,optional"`
	StrongBanker      float64 `hcl:"strong_banker,optional"`
	MildBanker        float64 `hcl:"mild_banker,optional"`
	MildPlayer        float64 `hcl:"mild_player,optional"`
	StrongPlayer      float64 `hcl:"strong_player,optional"`
}

// CountSettings overrides entries of the count weight table, keyed by rank
// digit.
type CountSettings struct {
	Weights map[string]float64 `hcl:"weights,optional"`
}

// ServerSettings contains websocket server configuration
type ServerSettings struct {
	Address string `hcl:"address,optional"`
	Port    int    `hcl:"port,optional"`
}

// LogSettings controls logging
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "engine"},
		{Type: "axis"},
		{Type: "count"},
		{Type: "server"},
		{Type: "log"},
	},
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	a := axis.DefaultConfig()
	return &Config{
		Engine: EngineSettings{
			Decks:   8,
			Trials:  montecarlo.DefaultTrials,
			Workers: montecarlo.DefaultWorkers,
		},
		Axis: AxisSettings{
			DeltaScale:        a.DeltaScale,
			CountScale:        a.CountScale,
			ProbabilityWeight: a.ProbabilityWeight,
			CountWeight:       a.CountWeight,
			StreakWindow:      a.StreakWindow,
			StreakStep:        a.StreakStep,
			StreakCap:         a.StreakCap,
			StrongBanker:      a.Thresholds.StrongBanker,
			MildBanker:        a.Thresholds.MildBanker,
			MildPlayer:        a.Thresholds.MildPlayer,
			StrongPlayer:      a.Thresholds.StrongPlayer,
		},
		Server: ServerSettings{
			Address: "localhost",
			Port:    8080,
		},
		Log: LogSettings{
			Level: "info",
			File:  "shoeaxis.log",
		},
	}
}

// Load loads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file.Body)
}

// Parse decodes configuration from HCL source.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(file.Body)
}

// decode applies each block over the defaults, so attributes left out of
// the file keep their default values.
func decode(body hcl.Body) (*Config, error) {
	content, diags := body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config := DefaultConfig()
	seen := make(map[string]bool)
	for _, block := range content.Blocks {
		if seen[block.Type] {
			return nil, fmt.Errorf("duplicate %s block at %s", block.Type, block.DefRange)
		}
		seen[block.Type] = true

		var target any
		switch block.Type {
		case "engine":
			target = &config.Engine
		case "axis":
			target = &config.Axis
		case "count":
			target = &config.Count
		case "server":
			target = &config.Server
		case "log":
			target = &config.Log
		}
		if diags := gohcl.DecodeBody(block.Body, nil, target); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s block: %s", block.Type, diags.Error())
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Engine.Decks < 1 {
		return fmt.Errorf("engine: decks must be at least 1, got %d", c.Engine.Decks)
	}
	if c.Engine.Trials < 0 {
		return fmt.Errorf("engine: %w: %d", montecarlo.ErrInvalidTrials, c.Engine.Trials)
	}
	if c.Engine.Workers < 1 {
		return fmt.Errorf("engine: workers must be at least 1, got %d", c.Engine.Workers)
	}

	a := c.Axis
	if a.DeltaScale <= 0 || a.CountScale <= 0 {
		return fmt.Errorf("axis: scales must be positive")
	}
	if a.ProbabilityWeight < 0 || a.CountWeight < 0 || a.ProbabilityWeight+a.CountWeight == 0 {
		return fmt.Errorf("axis: weights must be non-negative and not both zero")
	}
	if a.StreakWindow < 0 || a.StreakStep < 0 || a.StreakCap < 0 {
		return fmt.Errorf("axis: streak settings must not be negative")
	}
	if !(a.StrongPlayer <= a.MildPlayer && a.MildPlayer < a.MildBanker && a.MildBanker <= a.StrongBanker) {
		return fmt.Errorf("axis: thresholds must satisfy strong_player <= mild_player < mild_banker <= strong_banker")
	}

	if _, err := count.WeightsFromMap(c.Count.Weights); err != nil {
		return fmt.Errorf("count: %w", err)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// EstimatorConfig returns the Monte Carlo settings.
func (c *Config) EstimatorConfig() montecarlo.Config {
	return montecarlo.Config{
		Trials:   c.Engine.Trials,
		Workers:  c.Engine.Workers,
		BaseSeed: c.Engine.Seed,
	}
}

// AxisConfig returns the scorer settings.
func (c *Config) AxisConfig() axis.Config {
	return axis.Config{
		DeltaScale:        c.Axis.DeltaScale,
		CountScale:        c.Axis.CountScale,
		ProbabilityWeight: c.Axis.ProbabilityWeight,
		CountWeight:       c.Axis.CountWeight,
		StreakWindow:      c.Axis.StreakWindow,
		StreakStep:        c.Axis.StreakStep,
		StreakCap:         c.Axis.StreakCap,
		Thresholds: axis.Thresholds{
			StrongBanker: c.Axis.StrongBanker,
			MildBanker:   c.Axis.MildBanker,
			MildPlayer:   c.Axis.MildPlayer,
			StrongPlayer: c.Axis.StrongPlayer,
		},
	}
}

// Weights returns the count weight table with any overrides applied.
func (c *Config) Weights() (count.Weights, error) {
	return count.WeightsFromMap(c.Count.Weights)
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// ServerAddress returns the full server address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
