// Package analysis computes performance metrics over a completed backtest:
// return and risk figures for the value series, and activity statistics for
// the trade ledger. Metrics that have no defined value for the input, such
// as a Sharpe ratio over a zero-variance series, are reported as explicitly
// undefined rather than zero or NaN.
package analysis

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gomentum/internal/domain"
)

// tradingDaysPerYear is the annualization factor for metrics on daily
// returns. Calendar-time figures such as the annualized return use 365.
const tradingDaysPerYear = 252

// Ratio is a metric that may be undefined for a given input.
type Ratio struct {
	Value float64
	Valid bool
}

func defined(v float64) Ratio { return Ratio{Value: v, Valid: true} }

// String formats the ratio to two decimals, or "undefined".
func (r Ratio) String() string {
	if !r.Valid {
		return "undefined"
	}
	return fmt.Sprintf("%.2f", r.Value)
}

// Metrics summarizes a portfolio value series against a benchmark.
type Metrics struct {
	TotalReturn      float64
	AnnualizedReturn Ratio
	Volatility       Ratio // annualized standard deviation of daily returns
	Sharpe           Ratio
	Sortino          Ratio
	MaxDrawdown      float64 // worst peak-to-trough loss, as a positive fraction
	Beta             Ratio
	Alpha            Ratio // annualized
}

// Analyser computes Metrics from value series.
type Analyser struct {
	RiskFreeRate float64 // annual, e.g. 0.02
}

// NewAnalyser creates an Analyser with the given annual risk-free rate.
func NewAnalyser(riskFreeRate float64) *Analyser {
	return &Analyser{RiskFreeRate: riskFreeRate}
}

// Analyse computes the full metric set for a portfolio value series measured
// against a benchmark series. The two series are aligned by date; beta and
// alpha use only the overlapping dates.
func (a *Analyser) Analyse(values, benchmark []domain.ValuePoint) Metrics {
	m := Metrics{}
	if len(values) < 2 {
		return m
	}

	first, last := values[0].Value, values[len(values)-1].Value
	m.TotalReturn = last/first - 1
	m.AnnualizedReturn = annualize(first, last, values[0].Date, values[len(values)-1].Date)
	m.MaxDrawdown = maxDrawdown(values)

	returns := dailyReturns(values)
	rfDaily := a.RiskFreeRate / tradingDaysPerYear

	if sd, ok := sampleStd(returns); ok && sd > 0 {
		m.Volatility = defined(sd * math.Sqrt(tradingDaysPerYear))
	}
	m.Sharpe = sharpe(returns, rfDaily)
	m.Sortino = sortino(returns, rfDaily)

	pr, br := alignedReturns(values, benchmark)
	m.Beta = beta(pr, br)
	if m.Beta.Valid {
		excessP := mean(pr) - rfDaily
		excessB := mean(br) - rfDaily
		m.Alpha = defined((excessP - m.Beta.Value*excessB) * tradingDaysPerYear)
	}
	return m
}

// annualize converts a total return over a calendar span into a yearly rate.
func annualize(first, last float64, start, end time.Time) Ratio {
	days := end.Sub(start).Hours() / 24
	if days <= 0 || first <= 0 || last <= 0 {
		return Ratio{}
	}
	return defined(math.Pow(last/first, 365/days) - 1)
}

// dailyReturns converts a value series into simple day-over-day returns.
func dailyReturns(values []domain.ValuePoint) []float64 {
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1].Value
		if prev == 0 {
			continue
		}
		returns = append(returns, values[i].Value/prev-1)
	}
	return returns
}

// maxDrawdown returns the largest peak-to-trough decline as a positive
// fraction of the peak.
func maxDrawdown(values []domain.ValuePoint) float64 {
	peak, worst := 0.0, 0.0
	for _, p := range values {
		if p.Value > peak {
			peak = p.Value
		}
		if peak > 0 {
			dd := 1 - p.Value/peak
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// sharpe is the annualized mean excess return over its sample standard
// deviation. Undefined for fewer than two returns or zero variance.
func sharpe(returns []float64, rfDaily float64) Ratio {
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - rfDaily
	}
	sd, ok := sampleStd(excess)
	if !ok || sd == 0 {
		return Ratio{}
	}
	return defined(mean(excess) / sd * math.Sqrt(tradingDaysPerYear))
}

// sortino is the annualized mean excess return over the standard deviation
// of the negative excess returns only. Undefined when fewer than two returns
// fall below the risk-free rate.
func sortino(returns []float64, rfDaily float64) Ratio {
	if len(returns) < 2 {
		return Ratio{}
	}
	excess := make([]float64, len(returns))
	var negatives []float64
	for i, r := range returns {
		excess[i] = r - rfDaily
		if excess[i] < 0 {
			negatives = append(negatives, excess[i])
		}
	}
	downside, ok := sampleStd(negatives)
	if !ok || downside == 0 {
		return Ratio{}
	}
	return defined(mean(excess) / downside * math.Sqrt(tradingDaysPerYear))
}

// alignedReturns produces portfolio and benchmark daily returns restricted
// to the dates both series cover.
func alignedReturns(values, benchmark []domain.ValuePoint) (pr, br []float64) {
	bench := make(map[time.Time]float64, len(benchmark))
	for _, p := range benchmark {
		bench[p.Date] = p.Value
	}

	var prevP, prevB float64
	started := false
	for _, p := range values {
		b, ok := bench[p.Date]
		if !ok {
			continue
		}
		if started && prevP != 0 && prevB != 0 {
			pr = append(pr, p.Value/prevP-1)
			br = append(br, b/prevB-1)
		}
		prevP, prevB = p.Value, b
		started = true
	}
	return pr, br
}

// beta regresses portfolio returns on benchmark returns. Undefined when the
// overlap is too short or the benchmark has zero variance.
func beta(pr, br []float64) Ratio {
	if len(pr) < 2 || len(pr) != len(br) {
		return Ratio{}
	}
	meanP, meanB := mean(pr), mean(br)
	var cov, varB float64
	for i := range pr {
		cov += (pr[i] - meanP) * (br[i] - meanB)
		varB += (br[i] - meanB) * (br[i] - meanB)
	}
	if varB == 0 {
		return Ratio{}
	}
	return defined(cov / varB)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd returns the sample standard deviation, or false for fewer than
// two observations.
func sampleStd(xs []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	m := mean(xs)
	var sumSq float64
	for _, x := range xs {
		sumSq += (x - m) * (x - m)
	}
	return math.Sqrt(sumSq / float64(len(xs)-1)), true
}

// Report bundles the metric set with trade statistics for rendering.
type Report struct {
	Metrics Metrics
	Trades  TradeStats
}

// String renders the report as a fixed-width text block.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Performance\n")
	fmt.Fprintf(&b, "  total return      %8.2f%%\n", r.Metrics.TotalReturn*100)
	fmt.Fprintf(&b, "  annualized return %s\n", percent(r.Metrics.AnnualizedReturn))
	fmt.Fprintf(&b, "  volatility        %s\n", percent(r.Metrics.Volatility))
	fmt.Fprintf(&b, "  sharpe            %s\n", r.Metrics.Sharpe)
	fmt.Fprintf(&b, "  sortino           %s\n", r.Metrics.Sortino)
	fmt.Fprintf(&b, "  max drawdown      %8.2f%%\n", r.Metrics.MaxDrawdown*100)
	fmt.Fprintf(&b, "  beta              %s\n", r.Metrics.Beta)
	fmt.Fprintf(&b, "  alpha             %s\n", percent(r.Metrics.Alpha))
	fmt.Fprintf(&b, "Activity\n")
	fmt.Fprintf(&b, "  trades            %d (%d buys, %d sells)\n",
		r.Trades.Total, r.Trades.Buys, r.Trades.Sells)
	fmt.Fprintf(&b, "  buy notional      %12.2f\n", r.Trades.BuyNotional)
	fmt.Fprintf(&b, "  sell notional     %12.2f\n", r.Trades.SellNotional)
	fmt.Fprintf(&b, "  costs paid        %12.2f\n", r.Trades.Costs)
	fmt.Fprintf(&b, "  avg holding       %s days\n", r.Trades.AvgHoldingDays)
	fmt.Fprintf(&b, "  annual turnover   %12.2f\n", r.Trades.AnnualTurnover)
	return b.String()
}

func percent(r Ratio) string {
	if !r.Valid {
		return "undefined"
	}
	return fmt.Sprintf("%8.2f%%", r.Value*100)
}
