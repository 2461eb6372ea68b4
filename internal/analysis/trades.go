package analysis

import (
	"sort"
	"time"

	"gomentum/internal/domain"
)

// TradeStats summarizes the activity of a trade ledger.
type TradeStats struct {
	Total          int
	Buys           int
	Sells          int
	BuyVolume      int64
	SellVolume     int64
	BuyNotional    float64
	SellNotional   float64
	Costs          float64
	AvgHoldingDays Ratio   // FIFO share-weighted, undefined without round trips
	AnnualTurnover float64 // average traded notional per year
}

// lot is an open FIFO purchase.
type lot struct {
	date     time.Time
	quantity int64
}

// AnalyseTrades computes activity statistics over a trade ledger. start and
// end bound the run; the turnover figure scales traded notional to a yearly
// rate over that span.
func AnalyseTrades(trades []domain.Trade, start, end time.Time) TradeStats {
	stats := TradeStats{Total: len(trades)}

	sorted := append([]domain.Trade(nil), trades...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	lots := make(map[string][]lot)
	var shareDays, sharesClosed float64

	for _, t := range sorted {
		stats.Costs += t.Costs
		switch t.Action {
		case domain.ActionBuy:
			stats.Buys++
			stats.BuyVolume += t.Quantity
			stats.BuyNotional += t.Notional()
			lots[t.Symbol] = append(lots[t.Symbol], lot{t.Date, t.Quantity})
		case domain.ActionSell:
			stats.Sells++
			stats.SellVolume += t.Quantity
			stats.SellNotional += t.Notional()

			// Match the sale against the oldest open lots.
			remaining := t.Quantity
			queue := lots[t.Symbol]
			for remaining > 0 && len(queue) > 0 {
				matched := queue[0].quantity
				if matched > remaining {
					matched = remaining
				}
				held := t.Date.Sub(queue[0].date).Hours() / 24
				shareDays += float64(matched) * held
				sharesClosed += float64(matched)

				queue[0].quantity -= matched
				remaining -= matched
				if queue[0].quantity == 0 {
					queue = queue[1:]
				}
			}
			lots[t.Symbol] = queue
		}
	}

	if sharesClosed > 0 {
		stats.AvgHoldingDays = defined(shareDays / sharesClosed)
	}

	days := end.Sub(start).Hours() / 24
	if days > 0 {
		stats.AnnualTurnover = (stats.BuyNotional + stats.SellNotional) / 2 / days * 365
	}
	return stats
}
