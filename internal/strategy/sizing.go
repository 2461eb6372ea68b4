package strategy

import "math"

// Compile-time interface check.
var _ PositionSizer = (*ATRPositionSizer)(nil)

// ATRPositionSizer targets a fixed fraction of account value at risk per
// position, normalized by the symbol's Average True Range: more volatile
// symbols get smaller positions.
type ATRPositionSizer struct {
	RiskPerTrade float64 // fraction of account value risked per position
}

// NewATRPositionSizer creates a sizer risking the given fraction of account
// value per trade.
func NewATRPositionSizer(riskPerTrade float64) *ATRPositionSizer {
	return &ATRPositionSizer{RiskPerTrade: riskPerTrade}
}

// Size returns floor(accountValue × RiskPerTrade / volatility) shares. A
// zero, negative, or NaN volatility has no finite target and returns
// ErrSizingUndefined.
func (s *ATRPositionSizer) Size(accountValue, volatility float64) (int64, error) {
	if volatility <= 0 || math.IsNaN(volatility) {
		return 0, ErrSizingUndefined
	}
	return int64(math.Floor(accountValue * s.RiskPerTrade / volatility)), nil
}
