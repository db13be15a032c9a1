package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/paysentinel/transfer-risk-backend/internal/service/risk"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Risk     RiskConfig     `koanf:"risk"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `koanf:"requests_per_second"`
	BurstSize         int `koanf:"burst_size"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`

	// HistoryLimit caps how many past transactions are fetched per user.
	HistoryLimit int `koanf:"history_limit"`
}

type RedisConfig struct {
	URL      string `koanf:"url"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// RiskConfig is the runtime-tunable surface of the scoring core. The admin
// system owns these values; the core only reads them.
type RiskConfig struct {
	Thresholds ThresholdConfig  `koanf:"thresholds"`
	Weights    WeightConfig     `koanf:"weights"`
	MinSamples MinSamplesConfig `koanf:"min_samples"`

	MeanMultipleCeiling float64 `koanf:"mean_multiple_ceiling"`
}

type ThresholdConfig struct {
	Warn             int           `koanf:"warn"`
	Delay            int           `koanf:"delay"`
	Block            int           `koanf:"block"`
	AutoApproveBelow float64       `koanf:"auto_approve_below"`
	DelayHold        time.Duration `koanf:"delay_hold"`
}

type WeightConfig struct {
	Amount    float64 `koanf:"amount"`
	Time      float64 `koanf:"time"`
	Recipient float64 `koanf:"recipient"`
}

type MinSamplesConfig struct {
	Amount         int `koanf:"amount"`
	TimeBehavioral int `koanf:"time_behavioral"`
	TimeVelocity   int `koanf:"time_velocity"`
	Recipient      int `koanf:"recipient"`
}

// RiskCoreConfig converts the loaded configuration into the core's
// injected config.
func (c *Config) RiskCoreConfig() risk.Config {
	return risk.Config{
		Thresholds: risk.Thresholds{
			Warn:             c.Risk.Thresholds.Warn,
			Delay:            c.Risk.Thresholds.Delay,
			Block:            c.Risk.Thresholds.Block,
			AutoApproveBelow: c.Risk.Thresholds.AutoApproveBelow,
			DelayHold:        c.Risk.Thresholds.DelayHold,
		},
		Weights: risk.Weights{
			Amount:    c.Risk.Weights.Amount,
			Time:      c.Risk.Weights.Time,
			Recipient: c.Risk.Weights.Recipient,
		},
		MinSamples: risk.MinSamples{
			Amount:         c.Risk.MinSamples.Amount,
			TimeBehavioral: c.Risk.MinSamples.TimeBehavioral,
			TimeVelocity:   c.Risk.MinSamples.TimeVelocity,
			Recipient:      c.Risk.MinSamples.Recipient,
		},
		MeanMultipleCeiling: c.Risk.MeanMultipleCeiling,
	}
}

// Validate rejects configurations the core refuses to run with.
func (c *Config) Validate() error {
	return c.RiskCoreConfig().Validate()
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// Config file is optional.
	if path == "" {
		path = "configs/config.yaml"
	}
	_ = k.Load(file.Provider(path), yaml.Parser())

	// Environment variables override everything (TRE_SERVER_PORT etc).
	if err := k.Load(env.Provider("TRE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "TRE_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaultConfig() *Config {
	core := risk.DefaultConfig()
	return &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 100,
				BurstSize:         200,
			},
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			HistoryLimit:    500,
		},
		Redis: RedisConfig{
			DB: 0,
		},
		Risk: RiskConfig{
			Thresholds: ThresholdConfig{
				Warn:             core.Thresholds.Warn,
				Delay:            core.Thresholds.Delay,
				Block:            core.Thresholds.Block,
				AutoApproveBelow: core.Thresholds.AutoApproveBelow,
				DelayHold:        core.Thresholds.DelayHold,
			},
			Weights: WeightConfig{
				Amount:    core.Weights.Amount,
				Time:      core.Weights.Time,
				Recipient: core.Weights.Recipient,
			},
			MinSamples: MinSamplesConfig{
				Amount:         core.MinSamples.Amount,
				TimeBehavioral: core.MinSamples.TimeBehavioral,
				TimeVelocity:   core.MinSamples.TimeVelocity,
				Recipient:      core.MinSamples.Recipient,
			},
			MeanMultipleCeiling: core.MeanMultipleCeiling,
		},
	}
}
