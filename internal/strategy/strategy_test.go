package strategy

import (
	"errors"
	"math"
	"testing"
	"time"

	"gomentum/internal/config"
	"gomentum/internal/dataset"
	"gomentum/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// growthSeries builds n daily bars starting at 100 and compounding by the
// given daily rate.
func growthSeries(symbol string, n int, rate float64) *dataset.Series {
	bars := make([]domain.Bar, n)
	price := 100.0
	for i := range bars {
		bars[i] = domain.Bar{
			Symbol:   symbol,
			Date:     day(i),
			Open:     price,
			High:     price * 1.01,
			Low:      price * 0.99,
			Close:    price,
			AdjClose: price,
			Volume:   1000,
		}
		price *= 1 + rate
	}
	return dataset.NewSeries(symbol, bars)
}

func testRanking() *MomentumRanking {
	return NewMomentumRanking(20, 20, 20, 0.15)
}

func TestRankOrdersFasterGrowthFirst(t *testing.T) {
	universe := map[string]*dataset.Series{
		"FAST": growthSeries("FAST", 30, 0.01),
		"SLOW": growthSeries("SLOW", 30, 0.002),
	}

	got := testRanking().Rank(universe, day(29))
	want := []string{"FAST", "SLOW"}
	if len(got) != len(want) {
		t.Fatalf("Rank returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Rank[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRankTieBreaksBySymbol(t *testing.T) {
	universe := map[string]*dataset.Series{
		"ZZZ": growthSeries("ZZZ", 30, 0.01),
		"AAA": growthSeries("AAA", 30, 0.01),
	}

	got := testRanking().Rank(universe, day(29))
	if len(got) != 2 || got[0] != "AAA" || got[1] != "ZZZ" {
		t.Errorf("Rank = %v, want [AAA ZZZ]", got)
	}
}

func TestEligibleRejectsFlatSeries(t *testing.T) {
	// A flat series closes exactly at its moving average, never above it.
	flat := growthSeries("FLAT", 30, 0)
	if testRanking().Eligible(flat) {
		t.Error("Eligible = true for flat series, want false")
	}
}

func TestEligibleRejectsShortHistory(t *testing.T) {
	short := growthSeries("NEW", 10, 0.01)
	if testRanking().Eligible(short) {
		t.Error("Eligible = true with 10 bars and 20-bar windows, want false")
	}
}

func TestEligibleRejectsLargeGap(t *testing.T) {
	s := growthSeries("GAP", 30, 0.01)
	bars := append([]domain.Bar(nil), s.Bars()...)
	// One 20% overnight jump inside the gap window.
	for i := 25; i < len(bars); i++ {
		bars[i].AdjClose *= 1.20
		bars[i].Close *= 1.20
	}
	gapped := dataset.NewSeries("GAP", bars)

	if testRanking().Eligible(gapped) {
		t.Error("Eligible = true with a 20% gap, want false")
	}
	if !testRanking().Eligible(s) {
		t.Error("Eligible = false for the un-gapped control series, want true")
	}
}

func TestRankSkipsIneligibleSymbols(t *testing.T) {
	universe := map[string]*dataset.Series{
		"UP":   growthSeries("UP", 30, 0.01),
		"FLAT": growthSeries("FLAT", 30, 0),
	}

	got := testRanking().Rank(universe, day(29))
	if len(got) != 1 || got[0] != "UP" {
		t.Errorf("Rank = %v, want [UP]", got)
	}
}

func TestMomentumScoreZeroVariance(t *testing.T) {
	slope, r2 := olsFit([]float64{5, 5, 5, 5})
	if slope != 0 || r2 != 0 {
		t.Errorf("olsFit(constant) = (%v, %v), want (0, 0)", slope, r2)
	}
}

func TestATRSizerFloors(t *testing.T) {
	sizer := NewATRPositionSizer(0.001)

	got, err := sizer.Size(10000, 3)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if want := int64(3); got != want {
		t.Errorf("Size(10000, 3) = %d, want %d", got, want)
	}
}

func TestATRSizerUndefined(t *testing.T) {
	sizer := NewATRPositionSizer(0.001)

	for _, vol := range []float64{0, -1, math.NaN()} {
		if _, err := sizer.Size(10000, vol); !errors.Is(err, ErrSizingUndefined) {
			t.Errorf("Size(10000, %v) error = %v, want ErrSizingUndefined", vol, err)
		}
	}
}

func TestMovingAverageFilter(t *testing.T) {
	filter := NewMovingAverageFilter(10)

	rising := growthSeries("SPY", 15, 0.01)
	if !filter.IsBullish(rising, day(14)) {
		t.Error("IsBullish = false for rising index, want true")
	}

	falling := growthSeries("SPY", 15, -0.01)
	if filter.IsBullish(falling, day(14)) {
		t.Error("IsBullish = true for falling index, want false")
	}

	short := growthSeries("SPY", 5, 0.01)
	if filter.IsBullish(short, day(4)) {
		t.Error("IsBullish = true with insufficient history, want false")
	}
}

func TestThresholdRebalance(t *testing.T) {
	policy := NewThresholdRebalance(0.1)

	tests := []struct {
		current, target int64
		want            bool
	}{
		{100, 105, false}, // 5% drift, below threshold
		{100, 115, true},  // 15% drift
		{100, 85, true},   // drift is symmetric
		{0, 3, true},      // new position always trades
		{0, 0, false},
		{100, 100, false},
	}
	for _, tt := range tests {
		if got := policy.ShouldRebalance(tt.current, tt.target); got != tt.want {
			t.Errorf("ShouldRebalance(%d, %d) = %v, want %v", tt.current, tt.target, got, tt.want)
		}
	}
}

func TestFactories(t *testing.T) {
	if _, err := NewRankingPolicy(config.StrategyConfig{Type: "momentum"}); err != nil {
		t.Errorf("NewRankingPolicy(momentum): %v", err)
	}
	if _, err := NewRankingPolicy(config.StrategyConfig{Type: "bogus"}); err == nil {
		t.Error("NewRankingPolicy(bogus): want error")
	}
	if _, err := NewPositionSizer(config.SizingConfig{Type: "atr_risk"}); err != nil {
		t.Errorf("NewPositionSizer(atr_risk): %v", err)
	}
	if _, err := NewPositionSizer(config.SizingConfig{Type: "bogus"}); err == nil {
		t.Error("NewPositionSizer(bogus): want error")
	}
	if _, err := NewMarketFilter(config.FilterConfig{Type: "moving_average"}); err != nil {
		t.Errorf("NewMarketFilter(moving_average): %v", err)
	}
	if _, err := NewMarketFilter(config.FilterConfig{Type: "bogus"}); err == nil {
		t.Error("NewMarketFilter(bogus): want error")
	}
	if _, err := NewRebalancePolicy(config.RebalanceConfig{Type: "threshold"}); err != nil {
		t.Errorf("NewRebalancePolicy(threshold): %v", err)
	}
	if _, err := NewRebalancePolicy(config.RebalanceConfig{Type: "bogus"}); err == nil {
		t.Error("NewRebalancePolicy(bogus): want error")
	}
}
