package strategy

import (
	"math"
	"sort"
	"time"

	"gomentum/internal/dataset"
)

// tradingDaysPerYear is the annualization factor for daily data.
const tradingDaysPerYear = 252

// Compile-time interface check.
var _ RankingPolicy = (*MomentumRanking)(nil)

// MomentumRanking orders symbols by the annualized slope of a linear
// regression over log prices, weighted by the regression's R². Symbols must
// trade above their trend moving average and show no recent single-day gap
// larger than MaxGap to be eligible.
type MomentumRanking struct {
	MomentumWindow int     // regression lookback, default 90
	TrendWindow    int     // moving-average eligibility filter, default 100
	GapWindow      int     // lookback for the gap filter, default 90
	MaxGap         float64 // maximum absolute day-over-day change, default 0.15
}

// NewMomentumRanking creates a MomentumRanking with the standard windows.
func NewMomentumRanking(momentumWindow, trendWindow, gapWindow int, maxGap float64) *MomentumRanking {
	return &MomentumRanking{
		MomentumWindow: momentumWindow,
		TrendWindow:    trendWindow,
		GapWindow:      gapWindow,
		MaxGap:         maxGap,
	}
}

// Rank evaluates every symbol against data up to asOf and returns eligible
// symbols ordered by descending momentum score. Ties are broken by symbol
// name so two runs over the same data produce identical orderings.
func (r *MomentumRanking) Rank(universe map[string]*dataset.Series, asOf time.Time) []string {
	type scored struct {
		symbol string
		score  float64
	}

	var rankings []scored
	for _, symbol := range dataset.SortedSymbols(universe) {
		view := universe[symbol].UpTo(asOf)
		if !r.Eligible(view) {
			continue
		}
		rankings = append(rankings, scored{symbol, r.momentumScore(view)})
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].score != rankings[j].score {
			return rankings[i].score > rankings[j].score
		}
		return rankings[i].symbol < rankings[j].symbol
	})

	out := make([]string, len(rankings))
	for i, s := range rankings {
		out[i] = s.symbol
	}
	return out
}

// Eligible applies the three gates from the policy definition: enough
// history, price above the trend moving average, and no recent price gap
// beyond MaxGap.
func (r *MomentumRanking) Eligible(s *dataset.Series) bool {
	n := s.Len()
	if n < r.MomentumWindow || n < r.TrendWindow {
		return false
	}

	last := s.Bar(n - 1).AdjClose
	if last <= tailMean(s, r.TrendWindow) {
		return false
	}

	return r.maxAbsDailyChange(s) <= r.MaxGap
}

// maxAbsDailyChange returns the largest absolute day-over-day percentage
// change within the trailing gap window.
func (r *MomentumRanking) maxAbsDailyChange(s *dataset.Series) float64 {
	n := s.Len()
	start := n - r.GapWindow
	if start < 1 {
		start = 1
	}

	maxChange := 0.0
	for i := start; i < n; i++ {
		prev := s.Bar(i - 1).AdjClose
		if prev == 0 {
			continue
		}
		change := math.Abs(s.Bar(i).AdjClose/prev - 1)
		if change > maxChange {
			maxChange = change
		}
	}
	return maxChange
}

// momentumScore fits an ordinary least-squares line to the log of the
// trailing MomentumWindow adjusted closes and returns the annualized slope
// weighted by the fit's R².
func (r *MomentumRanking) momentumScore(s *dataset.Series) float64 {
	n := s.Len()
	y := make([]float64, r.MomentumWindow)
	for i := range y {
		y[i] = math.Log(s.Bar(n-r.MomentumWindow+i).AdjClose)
	}

	slope, r2 := olsFit(y)
	annualized := math.Exp(slope*tradingDaysPerYear) - 1
	return annualized * r2
}

// olsFit regresses y against x = 0..len(y)-1 and returns the slope and the
// coefficient of determination. A series with zero variance yields slope 0
// and R² 0.
func olsFit(y []float64) (slope, r2 float64) {
	n := float64(len(y))
	if n < 2 {
		return 0, 0
	}

	var sumX, sumY, sumXX, sumXY, sumYY float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXX += x * x
		sumXY += x * v
		sumYY += v * v
	}

	covXY := sumXY - sumX*sumY/n
	varX := sumXX - sumX*sumX/n
	varY := sumYY - sumY*sumY/n

	if varX == 0 || varY == 0 {
		return 0, 0
	}

	slope = covXY / varX
	r := covXY / math.Sqrt(varX*varY)
	return slope, r * r
}

// tailMean returns the mean of the last window adjusted closes.
func tailMean(s *dataset.Series, window int) float64 {
	n := s.Len()
	sum := 0.0
	for i := n - window; i < n; i++ {
		sum += s.Bar(i).AdjClose
	}
	return sum / float64(window)
}
