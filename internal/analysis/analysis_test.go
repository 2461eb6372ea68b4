package analysis

import (
	"math"
	"strings"
	"testing"
	"time"

	"gomentum/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func series(values ...float64) []domain.ValuePoint {
	points := make([]domain.ValuePoint, len(values))
	for i, v := range values {
		points[i] = domain.ValuePoint{Date: day(i), Value: v}
	}
	return points
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestTotalReturn(t *testing.T) {
	a := NewAnalyser(0)
	m := a.Analyse(series(100, 110, 121), series(100, 110, 121))

	if !approx(m.TotalReturn, 0.21) {
		t.Errorf("TotalReturn = %v, want 0.21", m.TotalReturn)
	}
}

func TestAnnualizedReturnOverOneYear(t *testing.T) {
	values := []domain.ValuePoint{
		{Date: day(0), Value: 100},
		{Date: day(365), Value: 121},
	}
	a := NewAnalyser(0)
	m := a.Analyse(values, values)

	if !m.AnnualizedReturn.Valid {
		t.Fatal("AnnualizedReturn undefined, want defined")
	}
	if !approx(m.AnnualizedReturn.Value, 0.21) {
		t.Errorf("AnnualizedReturn = %v, want 0.21", m.AnnualizedReturn.Value)
	}
}

func TestSharpeUndefinedForZeroVariance(t *testing.T) {
	// Identical daily returns have zero variance, so the ratio is undefined.
	a := NewAnalyser(0)
	m := a.Analyse(series(100, 200, 400, 800), series(100, 101, 102, 103))

	if m.Sharpe.Valid {
		t.Errorf("Sharpe = %v, want undefined for zero-variance returns", m.Sharpe.Value)
	}
	if m.Sortino.Valid {
		t.Errorf("Sortino = %v, want undefined with no downside returns", m.Sortino.Value)
	}
	if got := m.Sharpe.String(); got != "undefined" {
		t.Errorf("Sharpe.String() = %q, want \"undefined\"", got)
	}
}

func TestSharpeDefinedForVaryingReturns(t *testing.T) {
	a := NewAnalyser(0)
	m := a.Analyse(series(100, 105, 102, 108, 104), series(100, 101, 102, 103, 104))

	if !m.Sharpe.Valid {
		t.Error("Sharpe undefined, want defined for varying returns")
	}
	if !m.Sortino.Valid {
		t.Error("Sortino undefined, want defined with losing days present")
	}
	if !m.Volatility.Valid || m.Volatility.Value <= 0 {
		t.Errorf("Volatility = %+v, want positive", m.Volatility)
	}
}

func TestMaxDrawdown(t *testing.T) {
	a := NewAnalyser(0)
	m := a.Analyse(series(100, 120, 90, 130), series(100, 100, 100, 100))

	if !approx(m.MaxDrawdown, 0.25) {
		t.Errorf("MaxDrawdown = %v, want 0.25", m.MaxDrawdown)
	}
}

func TestBetaAgainstIdenticalBenchmark(t *testing.T) {
	values := series(100, 110, 105, 120)
	a := NewAnalyser(0)
	m := a.Analyse(values, values)

	if !m.Beta.Valid || !approx(m.Beta.Value, 1) {
		t.Errorf("Beta = %+v, want 1 against an identical benchmark", m.Beta)
	}
	if !m.Alpha.Valid || !approx(m.Alpha.Value, 0) {
		t.Errorf("Alpha = %+v, want 0 against an identical benchmark", m.Alpha)
	}
}

func TestBetaUndefinedForFlatBenchmark(t *testing.T) {
	a := NewAnalyser(0)
	m := a.Analyse(series(100, 110, 105, 120), series(100, 100, 100, 100))

	if m.Beta.Valid {
		t.Errorf("Beta = %v, want undefined for a zero-variance benchmark", m.Beta.Value)
	}
	if m.Alpha.Valid {
		t.Error("Alpha defined, want undefined when beta is undefined")
	}
}

func TestAnalyseShortSeries(t *testing.T) {
	a := NewAnalyser(0)
	m := a.Analyse(series(100), series(100))

	if m.TotalReturn != 0 || m.Sharpe.Valid || m.Beta.Valid {
		t.Errorf("metrics for single point = %+v, want zero values and undefined ratios", m)
	}
}

func TestAnalyseTradesFIFO(t *testing.T) {
	trades := []domain.Trade{
		{Date: day(0), Symbol: "AAA", Action: domain.ActionBuy, Quantity: 100, Price: 10},
		{Date: day(10), Symbol: "AAA", Action: domain.ActionBuy, Quantity: 100, Price: 10},
		{Date: day(20), Symbol: "AAA", Action: domain.ActionSell, Quantity: 150, Price: 10},
	}

	stats := AnalyseTrades(trades, day(0), day(365))

	if stats.Total != 3 || stats.Buys != 2 || stats.Sells != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", stats.Total, stats.Buys, stats.Sells)
	}
	if !approx(stats.BuyNotional, 2000) || !approx(stats.SellNotional, 1500) {
		t.Errorf("notionals = %v/%v, want 2000/1500", stats.BuyNotional, stats.SellNotional)
	}

	// 100 shares held 20 days plus 50 shares held 10 days.
	if !stats.AvgHoldingDays.Valid {
		t.Fatal("AvgHoldingDays undefined, want defined")
	}
	if want := 2500.0 / 150.0; !approx(stats.AvgHoldingDays.Value, want) {
		t.Errorf("AvgHoldingDays = %v, want %v", stats.AvgHoldingDays.Value, want)
	}

	if !approx(stats.AnnualTurnover, 1750) {
		t.Errorf("AnnualTurnover = %v, want 1750", stats.AnnualTurnover)
	}
}

func TestAnalyseTradesNoRoundTrips(t *testing.T) {
	trades := []domain.Trade{
		{Date: day(0), Symbol: "AAA", Action: domain.ActionBuy, Quantity: 100, Price: 10},
	}

	stats := AnalyseTrades(trades, day(0), day(100))
	if stats.AvgHoldingDays.Valid {
		t.Errorf("AvgHoldingDays = %v, want undefined with no sells", stats.AvgHoldingDays.Value)
	}
}

func TestReportRendersUndefined(t *testing.T) {
	r := &Report{
		Metrics: Metrics{TotalReturn: 0.1},
		Trades:  TradeStats{Total: 1, Buys: 1},
	}

	text := r.String()
	if !strings.Contains(text, "undefined") {
		t.Errorf("report does not render undefined metrics:\n%s", text)
	}
	if !strings.Contains(text, "10.00%") {
		t.Errorf("report does not render total return:\n%s", text)
	}
}
