// Package config loads application configuration from environment variables
// via envconfig struct tags.
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	// --- Database ---
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"20"`

	// --- Ledger ---
	// HouseAccountID receives all commission.
	HouseAccountID int64 `envconfig:"HOUSE_ACCOUNT_ID" default:"7"`
	// CommissionPercentage is skimmed above the high-water mark at divest
	// time and by the weekly sweep.
	CommissionPercentage int64 `envconfig:"COMMISSION_PERCENTAGE" default:"10"`
	// StakeCommissionPercentage is skimmed off positive staking batches.
	StakeCommissionPercentage int64 `envconfig:"STAKE_COMMISSION_PERCENTAGE" default:"10"`
	// WeeklyCommissionThreshold is the minimum invested balance, in internal
	// units, for an account to be swept by the weekly commission job.
	WeeklyCommissionThreshold int64 `envconfig:"WEEKLY_COMMISSION_THRESHOLD" default:"100000000"`

	// --- Staking loop ---
	StakingIdleInterval  time.Duration `envconfig:"STAKING_IDLE_INTERVAL" default:"30s"`
	StakingBatchInterval time.Duration `envconfig:"STAKING_BATCH_INTERVAL" default:"60s"`

	// --- Environment ---
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance.
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if cfg.CommissionPercentage < 0 || cfg.CommissionPercentage > 100 {
		return nil, fmt.Errorf("COMMISSION_PERCENTAGE must be between 0 and 100, got %d", cfg.CommissionPercentage)
	}
	if cfg.StakeCommissionPercentage < 0 || cfg.StakeCommissionPercentage > 100 {
		return nil, fmt.Errorf("STAKE_COMMISSION_PERCENTAGE must be between 0 and 100, got %d", cfg.StakeCommissionPercentage)
	}
	return &cfg, nil
}
