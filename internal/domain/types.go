// Package domain defines the core data types shared across the gomentum
// platform: daily price bars, executed trades, and portfolio value points.
package domain

import "time"

// Bar is a single daily OHLCV record for one symbol. AdjClose is the
// dividend/split-adjusted close used by all strategy calculations.
type Bar struct {
	Symbol   string
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

// TradeAction is the direction of an executed trade.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// Trade is one executed trade in the backtest ledger. Records are
// append-only: once created they are never mutated or deleted.
type Trade struct {
	Date     time.Time
	Symbol   string
	Action   TradeAction
	Quantity int64   // always > 0; Action carries the sign
	Price    float64 // execution price per share
	Costs    float64 // commission + slippage charged on this trade
}

// Notional returns the trade's gross value, price times quantity, before
// transaction costs.
func (t Trade) Notional() float64 {
	return t.Price * float64(t.Quantity)
}

// ValuePoint is one element of a portfolio or benchmark value series.
type ValuePoint struct {
	Date  time.Time
	Value float64
}
