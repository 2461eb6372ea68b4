package trading

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gomentum/internal/domain"
	"gomentum/internal/portfolio"
)

var testDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func TestCostModel(t *testing.T) {
	m := CostModel{CommissionRate: 0.001, SlippageRate: 0.0005}

	// 100 shares at 50.0 → notional 5000, costs 5000 * 0.0015 = 7.5.
	if got, want := m.Costs(50, 100), 7.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("Costs(50, 100) = %v, want %v", got, want)
	}

	// Zero rates charge nothing.
	if got := (CostModel{}).Costs(50, 100); got != 0 {
		t.Errorf("zero-rate Costs = %v, want 0", got)
	}
}

func TestExecuteBuy(t *testing.T) {
	p := portfolio.New(10000)
	tl := NewTradeLog()
	e := NewExecutor(CostModel{CommissionRate: 0.001, SlippageRate: 0.0005}, tl)

	if !e.ExecuteBuy(p, "AAPL", 10, 100, testDate) {
		t.Fatal("ExecuteBuy returned false with ample cash")
	}
	if got := p.Position("AAPL"); got != 10 {
		t.Errorf("Position(AAPL) = %d, want 10", got)
	}
	wantCash := 10000 - (1000 + 1.5)
	if got := p.Cash(); math.Abs(got-wantCash) > 1e-9 {
		t.Errorf("Cash = %v, want %v", got, wantCash)
	}
	if tl.Len() != 1 {
		t.Fatalf("trade log has %d records, want 1", tl.Len())
	}
	rec := tl.Trades()[0]
	if rec.Action != domain.ActionBuy || rec.Quantity != 10 || rec.Price != 100 {
		t.Errorf("unexpected trade record: %+v", rec)
	}
}

func TestExecuteBuyInsufficientCash(t *testing.T) {
	p := portfolio.New(999)
	tl := NewTradeLog()
	e := NewExecutor(CostModel{CommissionRate: 0.001, SlippageRate: 0.0005}, tl)

	// 10 × 100 = 1000 plus costs exceeds 999: no mutation, false return.
	if e.ExecuteBuy(p, "AAPL", 10, 100, testDate) {
		t.Fatal("ExecuteBuy succeeded beyond available cash")
	}
	if got := p.Cash(); got != 999 {
		t.Errorf("Cash = %v, want 999 (unchanged)", got)
	}
	if got := p.Position("AAPL"); got != 0 {
		t.Errorf("Position(AAPL) = %d, want 0 (unchanged)", got)
	}
	if tl.Len() != 0 {
		t.Errorf("trade log has %d records, want 0", tl.Len())
	}
}

func TestExecuteSellInsufficientShares(t *testing.T) {
	p := portfolio.New(0)
	p.AddPosition("AAPL", 5)
	e := NewExecutor(CostModel{}, nil)

	if e.ExecuteSell(p, "AAPL", 10, 100, testDate) {
		t.Fatal("ExecuteSell succeeded with only 5 of 10 shares held")
	}
	if got := p.Position("AAPL"); got != 5 {
		t.Errorf("Position(AAPL) = %d, want 5 (unchanged)", got)
	}
	if got := p.Cash(); got != 0 {
		t.Errorf("Cash = %v, want 0 (unchanged)", got)
	}
}

func TestBuyThenFullSellRoundTrip(t *testing.T) {
	costs := CostModel{CommissionRate: 0.001, SlippageRate: 0.0005}
	p := portfolio.New(10000)
	tl := NewTradeLog()
	e := NewExecutor(costs, tl)

	if !e.ExecuteBuy(p, "AAPL", 10, 100, testDate) {
		t.Fatal("buy leg failed")
	}
	if !e.ExecuteSell(p, "AAPL", 10, 100, testDate.AddDate(0, 0, 1)) {
		t.Fatal("sell leg failed")
	}

	// The symbol is fully gone from the ledger.
	if _, held := p.Positions()["AAPL"]; held {
		t.Error("AAPL still present after full sell")
	}

	// At an unchanged price, cash ends exactly one leg's costs down per side.
	wantCash := 10000 - 2*costs.Costs(100, 10)
	if got := p.Cash(); math.Abs(got-wantCash) > 1e-9 {
		t.Errorf("Cash = %v, want %v (twice the one-leg transaction cost)", got, wantCash)
	}
	if tl.Len() != 2 {
		t.Errorf("trade log has %d records, want 2", tl.Len())
	}
}

func TestCashNeverNegativeAcrossSequences(t *testing.T) {
	p := portfolio.New(1500)
	e := NewExecutor(CostModel{CommissionRate: 0.001, SlippageRate: 0.0005}, nil)

	// A mix of affordable and unaffordable operations.
	ops := []struct {
		buy      bool
		symbol   string
		quantity int64
		price    float64
	}{
		{true, "A", 10, 100}, // affordable
		{true, "B", 10, 100}, // unaffordable now
		{false, "A", 5, 110},
		{true, "B", 4, 100},
		{false, "A", 10, 100}, // only 5 held, rejected
		{false, "A", 5, 90},
	}
	for _, op := range ops {
		if op.buy {
			e.ExecuteBuy(p, op.symbol, op.quantity, op.price, testDate)
		} else {
			e.ExecuteSell(p, op.symbol, op.quantity, op.price, testDate)
		}
		if p.Cash() < 0 {
			t.Fatalf("cash went negative after %+v: %v", op, p.Cash())
		}
	}
}

func TestTradeLogCSV(t *testing.T) {
	tl := NewTradeLog()
	tl.Append(domain.Trade{
		Date: testDate, Symbol: "AAPL", Action: domain.ActionBuy,
		Quantity: 10, Price: 100, Costs: 1.5,
	})
	tl.Append(domain.Trade{
		Date: testDate.AddDate(0, 0, 7), Symbol: "AAPL", Action: domain.ActionSell,
		Quantity: 10, Price: 110, Costs: 2.5,
	})

	path := filepath.Join(t.TempDir(), "trades.csv")
	if err := tl.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2 trades", len(rows))
	}

	// The total column carries the cash impact: buys add costs to the
	// notional, sells subtract them.
	if got, want := rows[1][6], "1001.5"; got != want {
		t.Errorf("buy total = %s, want %s", got, want)
	}
	if got, want := rows[2][6], "1097.5"; got != want {
		t.Errorf("sell total = %s, want %s", got, want)
	}
}
