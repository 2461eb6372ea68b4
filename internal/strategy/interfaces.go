// Package strategy defines the pluggable policy interfaces the portfolio
// manager is built from (ranking, position sizing, market-regime filtering,
// rebalance decisions) together with one momentum implementation of each.
// Policies are pure functions of a read-only data snapshot and a date; they
// never mutate the portfolio ledger.
package strategy

import (
	"errors"
	"time"

	"gomentum/internal/dataset"
)

// ErrSizingUndefined reports a zero or missing volatility measure, for which
// no finite position size exists. Callers skip the symbol for the step.
var ErrSizingUndefined = errors.New("strategy: position size undefined for zero or missing volatility")

// RankingPolicy scores and orders a symbol universe as of a date, best
// first. Ineligible symbols are excluded from the result entirely.
type RankingPolicy interface {
	// Rank evaluates every symbol against data available up to asOf
	// (inclusive) and returns the eligible symbols ordered by descending
	// score, ties broken by symbol name.
	Rank(universe map[string]*dataset.Series, asOf time.Time) []string

	// Eligible reports whether a single series passes the policy's
	// eligibility gates as of its last bar.
	Eligible(s *dataset.Series) bool
}

// PositionSizer converts account value and a volatility measure into a
// target share count.
type PositionSizer interface {
	// Size returns the target share count, or ErrSizingUndefined when the
	// volatility measure is zero or not a number.
	Size(accountValue, volatility float64) (int64, error)
}

// MarketFilter classifies the benchmark trend as of a date. New long
// positions are only opened while bullish; exits are never gated.
type MarketFilter interface {
	IsBullish(index *dataset.Series, asOf time.Time) bool
}

// RebalancePolicy decides whether a position's drift from its target
// warrants a trade.
type RebalancePolicy interface {
	ShouldRebalance(current, target int64) bool
}
