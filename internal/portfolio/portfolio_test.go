package portfolio

import (
	"errors"
	"testing"
)

func TestAddPositionAndLookup(t *testing.T) {
	p := New(1000)

	p.AddPosition("AAPL", 10)
	if got := p.Position("AAPL"); got != 10 {
		t.Errorf("Position(AAPL) = %d, want 10", got)
	}

	p.AddPosition("AAPL", 5)
	if got := p.Position("AAPL"); got != 15 {
		t.Errorf("Position(AAPL) after second add = %d, want 15", got)
	}

	// Unknown symbols report zero, never an error.
	if got := p.Position("MSFT"); got != 0 {
		t.Errorf("Position(MSFT) = %d, want 0", got)
	}
}

func TestZeroQuantityRemoval(t *testing.T) {
	p := New(1000)

	p.AddPosition("AAPL", 10)
	p.AddPosition("AAPL", -10)

	if got := p.Position("AAPL"); got != 0 {
		t.Errorf("Position(AAPL) = %d, want 0", got)
	}
	if _, held := p.Positions()["AAPL"]; held {
		t.Error("zero-quantity position was not removed from the map")
	}
	if got := len(p.Symbols()); got != 0 {
		t.Errorf("Symbols() has %d entries, want 0", got)
	}
}

func TestSetCashRejectsNegative(t *testing.T) {
	p := New(100)

	if err := p.SetCash(-1); !errors.Is(err, ErrNegativeCash) {
		t.Errorf("SetCash(-1) = %v, want ErrNegativeCash", err)
	}
	if got := p.Cash(); got != 100 {
		t.Errorf("Cash() after rejected set = %v, want 100 (unchanged)", got)
	}

	if err := p.SetCash(0); err != nil {
		t.Errorf("SetCash(0) = %v, want nil", err)
	}
}

func TestTotalValueSkipsUnpricedSymbols(t *testing.T) {
	p := New(500)
	p.AddPosition("AAPL", 10)
	p.AddPosition("MSFT", 2)

	// MSFT has no price today; only cash + AAPL counts.
	prices := map[string]float64{"AAPL": 100, "GOOG": 50}
	if got, want := p.TotalValue(prices), 500+10*100.0; got != want {
		t.Errorf("TotalValue = %v, want %v", got, want)
	}
}

func TestSymbolsSorted(t *testing.T) {
	p := New(0)
	p.AddPosition("MSFT", 1)
	p.AddPosition("AAPL", 1)
	p.AddPosition("GOOG", 1)

	got := p.Symbols()
	want := []string{"AAPL", "GOOG", "MSFT"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Symbols() = %v, want %v", got, want)
		}
	}
}
