// Package trading implements simulated trade execution against the portfolio
// ledger: the transaction cost model, the append-only trade log, and the
// executor enforcing affordability and availability.
package trading

// CostModel computes commission plus slippage for a trade. Both rates are
// non-negative fractions of the trade's notional value.
type CostModel struct {
	CommissionRate float64
	SlippageRate   float64
}

// Costs returns the total transaction cost for trading quantity shares at
// the given price. Pure function, no state.
func (m CostModel) Costs(price float64, quantity int64) float64 {
	notional := price * float64(quantity)
	return notional * (m.CommissionRate + m.SlippageRate)
}
