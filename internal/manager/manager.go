// Package manager composes the strategy policies into portfolio decisions.
// The PortfolioManager owns no market data and no ledger state of its own: it
// reads series snapshots, asks the policies what the portfolio should look
// like, and routes the resulting orders through the trade executor.
package manager

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"gomentum/internal/dataset"
	"gomentum/internal/portfolio"
	"gomentum/internal/strategy"
	"gomentum/internal/trading"
)

// PortfolioManager applies the composition and rebalance steps of the
// momentum strategy to a portfolio.
type PortfolioManager struct {
	ranking     strategy.RankingPolicy
	sizer       strategy.PositionSizer
	filter      strategy.MarketFilter
	rebalance   strategy.RebalancePolicy
	executor    *trading.Executor
	topFraction float64
	log         *slog.Logger
}

// New creates a PortfolioManager from the given policies. topFraction is the
// fraction of the ranked universe held as the target composition.
func New(
	ranking strategy.RankingPolicy,
	sizer strategy.PositionSizer,
	filter strategy.MarketFilter,
	rebalance strategy.RebalancePolicy,
	executor *trading.Executor,
	topFraction float64,
) *PortfolioManager {
	return &PortfolioManager{
		ranking:     ranking,
		sizer:       sizer,
		filter:      filter,
		rebalance:   rebalance,
		executor:    executor,
		topFraction: topFraction,
		log:         slog.Default().With("component", "manager"),
	}
}

// UpdateComposition replaces the portfolio's holdings with the current top of
// the momentum ranking. Held symbols that dropped out of the top are sold
// regardless of market regime; new entries are only opened while the market
// filter reports a bullish benchmark, each sized from available cash.
func (m *PortfolioManager) UpdateComposition(p *portfolio.Portfolio, stocks map[string]*dataset.Series, index *dataset.Series, asOf time.Time) {
	ranked := m.ranking.Rank(stocks, asOf)
	if len(ranked) == 0 {
		m.log.Warn("no eligible assets, skipping composition update", "date", asOf.Format(time.DateOnly))
		return
	}

	topN := int(math.Floor(float64(len(ranked)) * m.topFraction))
	top := make(map[string]bool, topN)
	for _, symbol := range ranked[:topN] {
		top[symbol] = true
	}

	// Exits first so the freed cash is available for new entries.
	for _, symbol := range p.Symbols() {
		if top[symbol] {
			continue
		}
		price, ok := priceAt(stocks, symbol, asOf)
		if !ok {
			m.log.Warn("no price for held symbol, cannot exit",
				"symbol", symbol, "date", asOf.Format(time.DateOnly))
			continue
		}
		m.executor.ExecuteSell(p, symbol, p.Position(symbol), price, asOf)
	}

	if !m.filter.IsBullish(index, asOf) {
		m.log.Info("bearish regime, no new entries", "date", asOf.Format(time.DateOnly))
		return
	}

	for _, symbol := range ranked[:topN] {
		if p.Position(symbol) > 0 {
			continue
		}
		price, ok := priceAt(stocks, symbol, asOf)
		if !ok {
			continue
		}
		atr, ok := stocks[symbol].Value(dataset.ColumnATR, asOf)
		if !ok {
			m.log.Warn("no volatility measure, skipping entry",
				"symbol", symbol, "date", asOf.Format(time.DateOnly))
			continue
		}

		quantity, err := m.sizer.Size(p.Cash(), atr)
		if err != nil {
			if errors.Is(err, strategy.ErrSizingUndefined) {
				m.log.Warn("position size undefined, skipping entry", "symbol", symbol)
				continue
			}
			m.log.Error("sizing failed", "symbol", symbol, "error", err)
			continue
		}
		m.executor.ExecuteBuy(p, symbol, quantity, price, asOf)
	}
}

// Rebalance re-sizes every held position against total account value and
// trades the difference when the drift exceeds the rebalance policy's
// threshold. It never opens or fully closes positions.
func (m *PortfolioManager) Rebalance(p *portfolio.Portfolio, stocks map[string]*dataset.Series, asOf time.Time) {
	prices := dataset.ClosingPrices(stocks, asOf)
	total := p.TotalValue(prices)

	for _, symbol := range p.Symbols() {
		price, ok := prices[symbol]
		if !ok {
			m.log.Warn("no price for held symbol, skipping rebalance",
				"symbol", symbol, "date", asOf.Format(time.DateOnly))
			continue
		}
		atr, ok := stocks[symbol].Value(dataset.ColumnATR, asOf)
		if !ok {
			continue
		}

		target, err := m.sizer.Size(total, atr)
		if err != nil {
			continue
		}

		current := p.Position(symbol)
		if !m.rebalance.ShouldRebalance(current, target) {
			continue
		}

		switch {
		case target > current:
			m.executor.ExecuteBuy(p, symbol, target-current, price, asOf)
		case target < current:
			m.executor.ExecuteSell(p, symbol, current-target, price, asOf)
		}
	}
}

// priceAt returns the adjusted close for symbol on the given date.
func priceAt(stocks map[string]*dataset.Series, symbol string, asOf time.Time) (float64, bool) {
	s, ok := stocks[symbol]
	if !ok {
		return 0, false
	}
	return s.AdjCloseAt(asOf)
}
