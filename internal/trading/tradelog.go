package trading

import (
	"encoding/csv"
	"os"
	"strconv"

	"gomentum/internal/domain"
)

// TradeLog is the append-only ledger of executed trades. Records are never
// mutated or removed after creation.
type TradeLog struct {
	trades []domain.Trade
}

// NewTradeLog creates an empty trade log.
func NewTradeLog() *TradeLog {
	return &TradeLog{}
}

// Append adds an executed trade to the log.
func (l *TradeLog) Append(t domain.Trade) {
	l.trades = append(l.trades, t)
}

// Len returns the number of logged trades.
func (l *TradeLog) Len() int { return len(l.trades) }

// Trades returns a copy of the trade history in execution order.
func (l *TradeLog) Trades() []domain.Trade {
	out := make([]domain.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// WriteCSV saves the trade history to a CSV file.
func (l *TradeLog) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "symbol", "action", "quantity", "price", "costs", "total"}); err != nil {
		return err
	}
	for _, t := range l.trades {
		// Total is the cash impact of the trade: a buy spends notional plus
		// costs, a sell nets notional minus costs.
		total := t.Notional() + t.Costs
		if t.Action == domain.ActionSell {
			total = t.Notional() - t.Costs
		}
		row := []string{
			t.Date.Format("2006-01-02"),
			t.Symbol,
			string(t.Action),
			strconv.FormatInt(t.Quantity, 10),
			strconv.FormatFloat(t.Price, 'f', -1, 64),
			strconv.FormatFloat(t.Costs, 'f', -1, 64),
			strconv.FormatFloat(total, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
