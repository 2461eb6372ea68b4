package strategy

import (
	"time"

	"gomentum/internal/dataset"
)

// Compile-time interface check.
var _ MarketFilter = (*MovingAverageFilter)(nil)

// MovingAverageFilter classifies the benchmark as bullish when its latest
// close sits above the trailing Window-period moving average. With fewer
// than Window observations the market is treated as bearish.
type MovingAverageFilter struct {
	Window int
}

// NewMovingAverageFilter creates a filter over the given window.
func NewMovingAverageFilter(window int) *MovingAverageFilter {
	return &MovingAverageFilter{Window: window}
}

// IsBullish reports whether the benchmark closed above its moving average
// as of the given date.
func (f *MovingAverageFilter) IsBullish(index *dataset.Series, asOf time.Time) bool {
	view := index.UpTo(asOf)
	if view.Len() < f.Window {
		return false
	}
	last := view.Bar(view.Len() - 1).AdjClose
	return last > tailMean(view, f.Window)
}
