// Package palnscfg loads a palns.Config from a YAML file, following the
// teacher pack's convention (see ChuLiYu/raft-recovery's internal/cli
// loadConfig) of a plain struct with yaml tags unmarshaled with
// gopkg.in/yaml.v3, defaulted before the file is applied rather than
// relying on zero values.
package palnscfg

import (
	"fmt"
	"os"
	"time"

	"github.com/go-palns/palns-engine/palns"
	"gopkg.in/yaml.v3"
)

// EngineConfig is the on-disk shape of the engine's tunables, plus the
// demo/runtime options (iteration and wall-clock abort bounds, metrics and
// websocket binding addresses) that live outside palns.Config itself.
type EngineConfig struct {
	Search struct {
		InitialTemperature float64 `yaml:"initial_temperature"`
		Alpha              float64 `yaml:"alpha"`
		InitialWeight      float64 `yaml:"initial_weight"`
		WBest              float64 `yaml:"w_best"`
		WBetter            float64 `yaml:"w_better"`
		WAccept            float64 `yaml:"w_accept"`
		WReject            float64 `yaml:"w_reject"`
		Decay              float64 `yaml:"decay"`
		Precision          float64 `yaml:"precision"`
		NumWorkers         int     `yaml:"num_workers"`
		RandomSeed         int64   `yaml:"random_seed"`
	} `yaml:"search"`

	Runtime struct {
		MaxIterations int `yaml:"max_iterations"`
		// MaxDuration is an additional wall-clock abort bound, checked
		// alongside MaxIterations. Zero means no duration bound — only
		// MaxIterations applies.
		MaxDuration time.Duration `yaml:"max_duration"`
	} `yaml:"runtime"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`

	Broadcast struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"broadcast"`
}

// Default returns an EngineConfig seeded from palns.DefaultConfig, the
// project's DefaultXConfig convention applied one layer up so a YAML file
// only needs to override the fields it cares about.
func Default() EngineConfig {
	base := palns.DefaultConfig()
	var c EngineConfig
	c.Search.InitialTemperature = base.InitialTemperature
	c.Search.Alpha = base.Alpha
	c.Search.InitialWeight = base.InitialWeight
	c.Search.WBest = base.WBest
	c.Search.WBetter = base.WBetter
	c.Search.WAccept = base.WAccept
	c.Search.WReject = base.WReject
	c.Search.Decay = base.Decay
	c.Search.Precision = base.Precision
	c.Search.NumWorkers = base.NumWorkers
	c.Search.RandomSeed = base.RandomSeed
	c.Runtime.MaxIterations = 10000
	c.Metrics.Addr = ":9090"
	c.Broadcast.Addr = ":9091"
	return c
}

// Load reads path, applies it on top of Default, and returns the merged
// EngineConfig. A missing or malformed file is reported, never silently
// ignored — config errors are meant to surface at startup, per the
// engine's own construction-time ConfigError policy.
func Load(path string) (EngineConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("palnscfg: failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("palnscfg: failed to parse config YAML: %w", err)
	}
	return cfg, nil
}

// ToEngineConfig converts the YAML-shaped configuration into the
// palns.Config the engine's constructor expects.
func (c EngineConfig) ToEngineConfig() palns.Config {
	return palns.Config{
		InitialTemperature: c.Search.InitialTemperature,
		Alpha:              c.Search.Alpha,
		InitialWeight:      c.Search.InitialWeight,
		WBest:              c.Search.WBest,
		WBetter:            c.Search.WBetter,
		WAccept:            c.Search.WAccept,
		WReject:            c.Search.WReject,
		Decay:              c.Search.Decay,
		Precision:          c.Search.Precision,
		NumWorkers:         c.Search.NumWorkers,
		RandomSeed:         c.Search.RandomSeed,
	}
}
