package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/risk"
)

// Config represents the complete engine configuration.
type Config struct {
	Account   AccountConfig   `json:"account" yaml:"account"`
	Execution ExecutionConfig `json:"execution" yaml:"execution"`
	Risk      RiskConfig      `json:"risk" yaml:"risk"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	ID             string  `json:"id" yaml:"id"`
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
}

// ExecutionConfig contains the simulated exchange's execution model.
type ExecutionConfig struct {
	Slippage          float64 `json:"slippage" yaml:"slippage"`
	MakerFee          float64 `json:"maker_fee" yaml:"maker_fee"`
	TakerFee          float64 `json:"taker_fee" yaml:"taker_fee"`
	MaintenanceMargin float64 `json:"maintenance_margin" yaml:"maintenance_margin"`

	// PeriodsPerYear annualizes the Sharpe ratio: the number of decision
	// cycles in a year at the configured cadence.
	PeriodsPerYear float64 `json:"periods_per_year" yaml:"periods_per_year"`
}

// RiskConfig contains the risk policy bounds.
type RiskConfig struct {
	LeverageMin        int                  `json:"leverage_min" yaml:"leverage_min"`
	LeverageMax        int                  `json:"leverage_max" yaml:"leverage_max"`
	MaxRiskPerTrade    float64              `json:"max_risk_per_trade" yaml:"max_risk_per_trade"`
	MinRewardRisk      float64              `json:"min_reward_risk" yaml:"min_reward_risk"`
	MaxDailyDrawdown   float64              `json:"max_daily_drawdown" yaml:"max_daily_drawdown"`
	MaxTotalDrawdown   float64              `json:"max_total_drawdown" yaml:"max_total_drawdown"`
	ConfidenceLeverage []ConfidenceLeverage `json:"confidence_leverage,omitempty" yaml:"confidence_leverage,omitempty"`
}

type ConfidenceLeverage struct {
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Leverage   int     `json:"leverage" yaml:"leverage"`
}

// JournalConfig selects the persistence sink.
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "csv" or "sqlite"
	TradesFile    string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	SnapshotsFile string `json:"snapshots_file,omitempty" yaml:"snapshots_file,omitempty"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Policy converts the risk section into the immutable policy value the
// validator consumes.
func (c *Config) Policy() risk.Policy {
	p := risk.Policy{
		LeverageMin:      c.Risk.LeverageMin,
		LeverageMax:      c.Risk.LeverageMax,
		MaxRiskPerTrade:  c.Risk.MaxRiskPerTrade,
		MinRewardRisk:    c.Risk.MinRewardRisk,
		MaxDailyDrawdown: c.Risk.MaxDailyDrawdown,
		MaxTotalDrawdown: c.Risk.MaxTotalDrawdown,
	}
	for _, cl := range c.Risk.ConfidenceLeverage {
		p.ConfidenceLeverage = append(p.ConfidenceLeverage, risk.ConfidenceLeverage{
			Confidence: cl.Confidence,
			Leverage:   cl.Leverage,
		})
	}
	return p
}

// LedgerConfig converts the account and execution sections into the paper
// engine's configuration.
func (c *Config) LedgerConfig() ledger.Config {
	return ledger.Config{
		InitialBalance:    c.Account.InitialBalance,
		Slippage:          c.Execution.Slippage,
		MakerFee:          c.Execution.MakerFee,
		TakerFee:          c.Execution.TakerFee,
		MaintenanceMargin: c.Execution.MaintenanceMargin,
	}
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid. Configuration problems
// fail fast here, before any decision cycle runs.
func (c *Config) Validate() error {
	if c.Account.InitialBalance <= 0 {
		return fmt.Errorf("account.initial_balance must be positive")
	}
	if c.Execution.Slippage < 0 || c.Execution.Slippage >= 1 {
		return fmt.Errorf("execution.slippage must be in [0, 1)")
	}
	if c.Execution.MakerFee < 0 || c.Execution.TakerFee < 0 {
		return fmt.Errorf("execution fees must be non-negative")
	}
	if c.Execution.MaintenanceMargin < 0 || c.Execution.MaintenanceMargin >= 1 {
		return fmt.Errorf("execution.maintenance_margin must be in [0, 1)")
	}
	if c.Execution.PeriodsPerYear <= 0 {
		return fmt.Errorf("execution.periods_per_year must be positive")
	}
	if err := c.Policy().Validate(); err != nil {
		return err
	}
	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && (c.Journal.TradesFile == "" || c.Journal.SnapshotsFile == "") {
		return fmt.Errorf("journal trades_file and snapshots_file required for CSV type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:             "PAPER-001",
			InitialBalance: 10000,
		},
		Execution: ExecutionConfig{
			Slippage:          0.001,
			MakerFee:          0.0002,
			TakerFee:          0.0004,
			MaintenanceMargin: 0.004,
			// One decision cycle every ~2.6 minutes, around the clock.
			PeriodsPerYear: 221 * 365,
		},
		Risk: RiskConfig{
			LeverageMin:      1,
			LeverageMax:      15,
			MaxRiskPerTrade:  0.02,
			MinRewardRisk:    1.5,
			MaxDailyDrawdown: 0.05,
			MaxTotalDrawdown: 0.20,
			ConfidenceLeverage: []ConfidenceLeverage{
				{Confidence: 0.9, Leverage: 10},
				{Confidence: 0.75, Leverage: 5},
				{Confidence: 0.5, Leverage: 2},
			},
		},
		Journal: JournalConfig{
			Type:          "csv",
			TradesFile:    "./trades.csv",
			SnapshotsFile: "./snapshots.csv",
		},
	}
}
