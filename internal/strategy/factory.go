package strategy

import (
	"fmt"

	"gomentum/internal/config"
)

// NewRankingPolicy builds the ranking policy named by the configuration.
func NewRankingPolicy(cfg config.StrategyConfig) (RankingPolicy, error) {
	switch cfg.Type {
	case "momentum":
		return NewMomentumRanking(cfg.MomentumWindow, cfg.TrendWindow, cfg.GapWindow, cfg.MaxGap), nil
	default:
		return nil, fmt.Errorf("unknown strategy type %q", cfg.Type)
	}
}

// NewPositionSizer builds the position sizer named by the configuration.
func NewPositionSizer(cfg config.SizingConfig) (PositionSizer, error) {
	switch cfg.Type {
	case "atr_risk":
		return NewATRPositionSizer(cfg.RiskPerTrade), nil
	default:
		return nil, fmt.Errorf("unknown sizing type %q", cfg.Type)
	}
}

// NewMarketFilter builds the market-regime filter named by the configuration.
func NewMarketFilter(cfg config.FilterConfig) (MarketFilter, error) {
	switch cfg.Type {
	case "moving_average":
		return NewMovingAverageFilter(cfg.Window), nil
	default:
		return nil, fmt.Errorf("unknown filter type %q", cfg.Type)
	}
}

// NewRebalancePolicy builds the rebalance policy named by the configuration.
func NewRebalancePolicy(cfg config.RebalanceConfig) (RebalancePolicy, error) {
	switch cfg.Type {
	case "threshold":
		return NewThresholdRebalance(cfg.Threshold), nil
	default:
		return nil, fmt.Errorf("unknown rebalance type %q", cfg.Type)
	}
}
