// Package config loads engine and service configuration from YAML or JSON
// files. A zero-value Config is not usable directly; call Default or Load,
// both of which produce validated configurations.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lambda-foundation/bridge"
	"github.com/lambda-foundation/bridge/fact"
	"github.com/lambda-foundation/bridge/ir"
)

// Config carries every tunable of the engine plus the connection settings
// of the boundary services.
type Config struct {
	Engine EngineConfig `json:"engine" yaml:"engine"`
	Queue  QueueConfig  `json:"queue" yaml:"queue"`
	Worker WorkerConfig `json:"worker" yaml:"worker"`
}

// EngineConfig holds the canonicalization and agreement parameters.
type EngineConfig struct {
	// Fuel bounds beta-reduction steps per canonicalization.
	Fuel int `json:"fuel" yaml:"fuel"`

	// MaxPasses bounds the entity-resolution fixed-point iteration.
	MaxPasses int `json:"max_passes" yaml:"max_passes"`

	// Rates is the currency conversion table, expressed against USD.
	Rates map[string]float64 `json:"rates" yaml:"rates"`

	// ProteinDim is the derived protein vector length.
	ProteinDim int `json:"protein_dim" yaml:"protein_dim"`

	// Weights are the agreement score coefficients; they must sum to 1.
	Weights bridge.Weights `json:"weights" yaml:"weights"`

	// Threshold is the acceptance gate in [0, 1].
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// QueueConfig holds the Redis connection settings for the comparison queue.
type QueueConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// WorkerConfig holds the comparison worker's settings.
type WorkerConfig struct {
	// Concurrency is the number of jobs processed in parallel.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// HeartbeatSeconds is the liveness publish interval.
	HeartbeatSeconds int `json:"heartbeat_seconds" yaml:"heartbeat_seconds"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			Fuel:       ir.DefaultFuel,
			MaxPasses:  fact.DefaultMaxPasses,
			ProteinDim: bridge.DefaultProteinDim,
			Weights:    bridge.DefaultWeights(),
			Threshold:  bridge.DefaultThreshold,
		},
		Queue: QueueConfig{
			Addr: "localhost:6379",
		},
		Worker: WorkerConfig{
			Concurrency:      4,
			HeartbeatSeconds: 10,
		},
	}
}

// Load reads a configuration file. The format is detected by file
// extension (.json, .yaml, .yml). Missing engine fields fall back to the
// defaults before validation.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	ext := filepath.Ext(path)
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format: %s (supported: .json, .yaml, .yml)", ext)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks every bound the engine enforces, so a bad file fails at
// load time instead of at New.
func (c Config) Validate() error {
	e := c.Engine
	if e.Fuel <= 0 {
		return fmt.Errorf("engine.fuel must be positive, got %d", e.Fuel)
	}
	if e.MaxPasses <= 0 {
		return fmt.Errorf("engine.max_passes must be positive, got %d", e.MaxPasses)
	}
	if e.ProteinDim <= 0 {
		return fmt.Errorf("engine.protein_dim must be positive, got %d", e.ProteinDim)
	}
	if e.Threshold < 0 || e.Threshold > 1 {
		return fmt.Errorf("engine.threshold must be in [0, 1], got %g", e.Threshold)
	}

	w := e.Weights
	if w.IR < 0 || w.Facts < 0 || w.Prov < 0 || w.Soul < 0 {
		return fmt.Errorf("engine.weights must be non-negative")
	}
	if sum := w.IR + w.Facts + w.Prov + w.Soul; math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("engine.weights must sum to 1, got %g", sum)
	}

	for code, rate := range e.Rates {
		if rate <= 0 {
			return fmt.Errorf("engine.rates[%s] must be positive, got %g", code, rate)
		}
	}

	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("worker.concurrency must be positive, got %d", c.Worker.Concurrency)
	}
	if c.Worker.HeartbeatSeconds <= 0 {
		return fmt.Errorf("worker.heartbeat_seconds must be positive, got %d", c.Worker.HeartbeatSeconds)
	}
	return nil
}

// EngineOptions translates the engine section into bridge options.
func (c Config) EngineOptions() []bridge.Option {
	e := c.Engine
	return []bridge.Option{
		bridge.WithFuel(e.Fuel),
		bridge.WithMaxPasses(e.MaxPasses),
		bridge.WithRates(e.Rates),
		bridge.WithProteinDim(e.ProteinDim),
		bridge.WithWeights(e.Weights),
		bridge.WithThreshold(e.Threshold),
	}
}
