// Package portfolio implements the backtest ledger: cash plus per-symbol
// share counts. The ledger is mutated only by the trade executor; strategy
// policies receive read-only views and produce decisions.
package portfolio

import (
	"errors"
	"sort"
)

// ErrNegativeCash is returned when a cash mutation would drive the balance
// below zero. The executor's affordability checks make this unreachable in a
// correct run; seeing it means a programming error and aborts the backtest.
var ErrNegativeCash = errors.New("portfolio: cash cannot be negative")

// Portfolio holds cash and integer share positions. Positions that reach
// exactly zero are removed; the positions map never carries zero entries.
type Portfolio struct {
	cash      float64
	positions map[string]int64
}

// New creates an empty portfolio with the given starting cash.
func New(initialCash float64) *Portfolio {
	return &Portfolio{
		cash:      initialCash,
		positions: make(map[string]int64),
	}
}

// Cash returns the current cash balance.
func (p *Portfolio) Cash() float64 { return p.cash }

// SetCash replaces the cash balance, rejecting negative values.
func (p *Portfolio) SetCash(value float64) error {
	if value < 0 {
		return ErrNegativeCash
	}
	p.cash = value
	return nil
}

// AddPosition adjusts a symbol's share count by a signed delta, deleting the
// entry when the result is exactly zero.
func (p *Portfolio) AddPosition(symbol string, quantity int64) {
	p.positions[symbol] += quantity
	if p.positions[symbol] == 0 {
		delete(p.positions, symbol)
	}
}

// Position returns the share count for a symbol, 0 when not held.
func (p *Portfolio) Position(symbol string) int64 {
	return p.positions[symbol]
}

// Symbols returns the held symbols in ascending order, for deterministic
// iteration during a simulation step.
func (p *Portfolio) Symbols() []string {
	symbols := make([]string, 0, len(p.positions))
	for s := range p.positions {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Positions returns a copy of the positions map.
func (p *Portfolio) Positions() map[string]int64 {
	out := make(map[string]int64, len(p.positions))
	for s, q := range p.positions {
		out[s] = q
	}
	return out
}

// TotalValue returns cash plus the marked-to-market value of every held
// symbol present in the supplied price map. Held symbols without a current
// price are excluded from the sum.
func (p *Portfolio) TotalValue(currentPrices map[string]float64) float64 {
	total := p.cash
	for symbol, quantity := range p.positions {
		if price, ok := currentPrices[symbol]; ok {
			total += float64(quantity) * price
		}
	}
	return total
}
