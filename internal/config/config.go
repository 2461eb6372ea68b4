package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the gomentum platform.
type Config struct {
	Storage   Storage         `yaml:"storage"`
	Server    Server          `yaml:"server"`
	Alpaca    Alpaca          `yaml:"alpaca"`
	Logging   Logging         `yaml:"logging"`
	Data      DataConfig      `yaml:"data"`
	Strategy  StrategyConfig  `yaml:"strategy"`
	Filter    FilterConfig    `yaml:"filter"`
	Sizing    SizingConfig    `yaml:"sizing"`
	Rebalance RebalanceConfig `yaml:"rebalance"`
	Costs     CostsConfig     `yaml:"costs"`
	Backtest  BacktestConfig  `yaml:"backtest"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir      string `yaml:"data_dir"`      // raw daily bars (Parquet)
	ProcessedDir string `yaml:"processed_dir"` // indicator-enriched datasets (CSV)
	SQLitePath   string `yaml:"sqlite_path"`   // backtest run recorder
}

// Server holds network listener configuration for the results API.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Alpaca holds credentials and endpoints for the Alpaca market-data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
}

// DataConfig controls the data pipeline: which window to download and
// process, the benchmark symbol, and the ATR indicator window.
type DataConfig struct {
	StartDate       string   `yaml:"start_date"` // YYYY-MM-DD
	EndDate         string   `yaml:"end_date"`   // YYYY-MM-DD
	IndexSymbol     string   `yaml:"index_symbol"`
	ATRWindow       int      `yaml:"atr_window"`
	Symbols         []string `yaml:"symbols"`    // explicit universe; empty = universe file
	BatchSize       int      `yaml:"batch_size"` // symbols per market-data request
	RateLimitPerMin int      `yaml:"rate_limit_per_min"`
}

// StrategyConfig selects and parameterizes the ranking policy.
type StrategyConfig struct {
	Type           string  `yaml:"type"` // "momentum"
	MomentumWindow int     `yaml:"momentum_window"`
	TrendWindow    int     `yaml:"trend_window"`
	GapWindow      int     `yaml:"gap_window"`
	MaxGap         float64 `yaml:"max_gap"`
	TopFraction    float64 `yaml:"top_fraction"`
}

// FilterConfig selects and parameterizes the market-regime filter.
type FilterConfig struct {
	Type   string `yaml:"type"` // "moving_average"
	Window int    `yaml:"window"`
}

// SizingConfig selects and parameterizes the position sizer.
type SizingConfig struct {
	Type         string  `yaml:"type"` // "atr_risk"
	RiskPerTrade float64 `yaml:"risk_per_trade"`
}

// RebalanceConfig selects and parameterizes the rebalance-decision policy.
type RebalanceConfig struct {
	Type      string  `yaml:"type"` // "threshold"
	Threshold float64 `yaml:"threshold"`
}

// CostsConfig defines the transaction cost model rates.
type CostsConfig struct {
	CommissionRate float64 `yaml:"commission_rate"`
	SlippageRate   float64 `yaml:"slippage_rate"`
}

// BacktestConfig defines capital, the risk-free rate for performance
// metrics, and the trade calendar cadence.
type BacktestConfig struct {
	InitialCapital     float64 `yaml:"initial_capital"`
	RiskFreeRate       float64 `yaml:"risk_free_rate"`
	CompositionWeekday *int    `yaml:"composition_weekday"` // time.Weekday 0-6, default 3 (Wednesday)
	RebalanceDays      []int   `yaml:"rebalance_days"`      // calendar days of month, default [1, 15]
}

// Weekday returns the composition-update weekday. Load guarantees the field
// is set.
func (b BacktestConfig) Weekday() time.Weekday {
	return time.Weekday(*b.CompositionWeekday)
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies environment variable overrides, and fills defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("PROCESSED_DIR"); v != "" {
		cfg.Storage.ProcessedDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars (highest priority — canonical names used by SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

// applyDefaults fills unset policy parameters with the standard momentum
// strategy values.
func applyDefaults(cfg *Config) {
	if cfg.Strategy.Type == "" {
		cfg.Strategy.Type = "momentum"
	}
	if cfg.Strategy.MomentumWindow == 0 {
		cfg.Strategy.MomentumWindow = 90
	}
	if cfg.Strategy.TrendWindow == 0 {
		cfg.Strategy.TrendWindow = 100
	}
	if cfg.Strategy.GapWindow == 0 {
		cfg.Strategy.GapWindow = 90
	}
	if cfg.Strategy.MaxGap == 0 {
		cfg.Strategy.MaxGap = 0.15
	}
	if cfg.Strategy.TopFraction == 0 {
		cfg.Strategy.TopFraction = 0.2
	}
	if cfg.Filter.Type == "" {
		cfg.Filter.Type = "moving_average"
	}
	if cfg.Filter.Window == 0 {
		cfg.Filter.Window = 200
	}
	if cfg.Sizing.Type == "" {
		cfg.Sizing.Type = "atr_risk"
	}
	if cfg.Sizing.RiskPerTrade == 0 {
		cfg.Sizing.RiskPerTrade = 0.001
	}
	if cfg.Rebalance.Type == "" {
		cfg.Rebalance.Type = "threshold"
	}
	if cfg.Rebalance.Threshold == 0 {
		cfg.Rebalance.Threshold = 0.1
	}
	if cfg.Data.ATRWindow == 0 {
		cfg.Data.ATRWindow = 14
	}
	if cfg.Data.BatchSize == 0 {
		cfg.Data.BatchSize = 200
	}
	if cfg.Data.RateLimitPerMin == 0 {
		cfg.Data.RateLimitPerMin = 200
	}
	if cfg.Backtest.InitialCapital == 0 {
		cfg.Backtest.InitialCapital = 100000
	}
	// A pointer distinguishes an absent weekday from an explicit Sunday (0).
	if cfg.Backtest.CompositionWeekday == nil {
		wednesday := int(time.Wednesday)
		cfg.Backtest.CompositionWeekday = &wednesday
	}
	if len(cfg.Backtest.RebalanceDays) == 0 {
		cfg.Backtest.RebalanceDays = []int{1, 15}
	}
	if cfg.Backtest.RiskFreeRate == 0 {
		cfg.Backtest.RiskFreeRate = 0.02
	}
}

// validate rejects configurations the engine cannot run with.
func validate(cfg *Config) error {
	if cfg.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("backtest.initial_capital must be positive, got %v", cfg.Backtest.InitialCapital)
	}
	if cfg.Costs.CommissionRate < 0 || cfg.Costs.SlippageRate < 0 {
		return fmt.Errorf("cost rates must be non-negative")
	}
	if cfg.Strategy.TopFraction <= 0 || cfg.Strategy.TopFraction > 1 {
		return fmt.Errorf("strategy.top_fraction must be in (0, 1], got %v", cfg.Strategy.TopFraction)
	}
	if w := *cfg.Backtest.CompositionWeekday; w < 0 || w > 6 {
		return fmt.Errorf("backtest.composition_weekday must be in [0, 6], got %d", w)
	}
	return nil
}
