package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gomentum.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const minimalConfig = `
storage:
  data_dir: "/tmp/gomentum/data"
  processed_dir: "/tmp/gomentum/processed"
  sqlite_path: "/tmp/gomentum/runs.db"
server:
  host: "0.0.0.0"
  port: 8080
alpaca:
  api_key: "test-key"
  api_secret: "test-secret"
logging:
  level: "info"
data:
  start_date: "2020-01-01"
  end_date: "2023-12-31"
  index_symbol: "SPY"
backtest:
  initial_capital: 100000
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Storage.DataDir != "/tmp/gomentum/data" {
		t.Errorf("DataDir = %q, want /tmp/gomentum/data", cfg.Storage.DataDir)
	}
	if cfg.Strategy.Type != "momentum" || cfg.Strategy.MomentumWindow != 90 {
		t.Errorf("strategy defaults = %+v, want momentum/90", cfg.Strategy)
	}
	if cfg.Strategy.MaxGap != 0.15 || cfg.Strategy.TopFraction != 0.2 {
		t.Errorf("strategy gates = %+v, want max_gap 0.15 top_fraction 0.2", cfg.Strategy)
	}
	if cfg.Filter.Type != "moving_average" || cfg.Filter.Window != 200 {
		t.Errorf("filter defaults = %+v, want moving_average/200", cfg.Filter)
	}
	if cfg.Sizing.RiskPerTrade != 0.001 {
		t.Errorf("RiskPerTrade = %v, want 0.001", cfg.Sizing.RiskPerTrade)
	}
	if cfg.Rebalance.Threshold != 0.1 {
		t.Errorf("Threshold = %v, want 0.1", cfg.Rebalance.Threshold)
	}
	if cfg.Data.ATRWindow != 14 {
		t.Errorf("ATRWindow = %d, want 14", cfg.Data.ATRWindow)
	}
	if got := cfg.Backtest.Weekday(); got != time.Wednesday {
		t.Errorf("Weekday() = %v, want Wednesday", got)
	}
	if len(cfg.Backtest.RebalanceDays) != 2 || cfg.Backtest.RebalanceDays[0] != 1 || cfg.Backtest.RebalanceDays[1] != 15 {
		t.Errorf("RebalanceDays = %v, want [1 15]", cfg.Backtest.RebalanceDays)
	}
}

func TestLoadExplicitValuesWin(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
strategy:
  type: "momentum"
  momentum_window: 60
  trend_window: 80
  max_gap: 0.2
  top_fraction: 0.3
rebalance:
  threshold: 0.25
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Strategy.MomentumWindow != 60 || cfg.Strategy.TrendWindow != 80 {
		t.Errorf("windows = %d/%d, want 60/80", cfg.Strategy.MomentumWindow, cfg.Strategy.TrendWindow)
	}
	if cfg.Strategy.MaxGap != 0.2 || cfg.Strategy.TopFraction != 0.3 {
		t.Errorf("gates = %v/%v, want 0.2/0.3", cfg.Strategy.MaxGap, cfg.Strategy.TopFraction)
	}
	if cfg.Rebalance.Threshold != 0.25 {
		t.Errorf("Threshold = %v, want 0.25", cfg.Rebalance.Threshold)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APCA_API_KEY_ID", "env-key")
	t.Setenv("APCA_API_SECRET_KEY", "env-secret")
	t.Setenv("DATA_DIR", "/override/data")

	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Alpaca.APIKey != "env-key" || cfg.Alpaca.APISecret != "env-secret" {
		t.Errorf("alpaca creds = %q/%q, want env overrides", cfg.Alpaca.APIKey, cfg.Alpaca.APISecret)
	}
	if cfg.Storage.DataDir != "/override/data" {
		t.Errorf("DataDir = %q, want /override/data", cfg.Storage.DataDir)
	}
}

func TestLoadSundayWeekday(t *testing.T) {
	// Weekday 0 is a real value (Sunday), not an unset field.
	cfg, err := Load(writeConfig(t, minimalConfig+`
  composition_weekday: 0
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Backtest.Weekday(); got != time.Sunday {
		t.Errorf("Weekday() = %v, want Sunday", got)
	}
}

func TestLoadRejectsBadWeekday(t *testing.T) {
	bad := minimalConfig + `
  composition_weekday: 7
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Error("Load with weekday 7 succeeded, want error")
	}
}

func TestLoadRejectsBadCapital(t *testing.T) {
	bad := `
backtest:
  initial_capital: -5
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Error("Load with negative capital succeeded, want error")
	}
}

func TestLoadRejectsBadTopFraction(t *testing.T) {
	bad := minimalConfig + `
strategy:
  top_fraction: 1.5
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Error("Load with top_fraction > 1 succeeded, want error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of missing file succeeded, want error")
	}
}
