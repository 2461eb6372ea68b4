package strategy

import "math"

// Compile-time interface check.
var _ RebalancePolicy = (*ThresholdRebalance)(nil)

// ThresholdRebalance triggers a trade only when the relative drift between
// the current and target share counts exceeds a fixed threshold, avoiding
// churn from small sizing fluctuations.
type ThresholdRebalance struct {
	Threshold float64 // minimum fractional drift, default 0.1
}

// NewThresholdRebalance creates a policy with the given drift threshold.
func NewThresholdRebalance(threshold float64) *ThresholdRebalance {
	return &ThresholdRebalance{Threshold: threshold}
}

// ShouldRebalance reports whether |current − target| / current exceeds the
// threshold. An unheld position rebalances whenever the target is positive.
func (t *ThresholdRebalance) ShouldRebalance(current, target int64) bool {
	if current == 0 {
		return target > 0
	}
	drift := math.Abs(float64(current-target)) / float64(current)
	return drift > t.Threshold
}
