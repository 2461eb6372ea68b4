// Package backtest drives the momentum strategy through historical data one
// trading date at a time. The Backtester owns the run lifecycle: it derives
// the trading calendar, fires the scheduled strategy steps, marks the
// portfolio to market daily, and collects the value series, benchmark series,
// and trade ledger into a Result.
package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"gomentum/internal/dataset"
	"gomentum/internal/domain"
	"gomentum/internal/manager"
	"gomentum/internal/portfolio"
	"gomentum/internal/trading"
)

// State tracks the run lifecycle of a Backtester.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result holds everything a completed run produced.
type Result struct {
	InitialCapital float64
	Values         []domain.ValuePoint // daily portfolio value, one per trading date
	Benchmark      []domain.ValuePoint // index normalized to the initial capital
	Trades         []domain.Trade
}

// FinalValue returns the last marked portfolio value, or the initial capital
// for an empty run.
func (r *Result) FinalValue() float64 {
	if len(r.Values) == 0 {
		return r.InitialCapital
	}
	return r.Values[len(r.Values)-1].Value
}

// Backtester replays the strategy over a date range. A Backtester runs
// exactly once; construct a new one for each run.
type Backtester struct {
	manager        *manager.PortfolioManager
	schedule       Schedule
	portfolio      *portfolio.Portfolio
	tradeLog       *trading.TradeLog
	stocks         map[string]*dataset.Series
	index          *dataset.Series
	initialCapital float64
	start, end     time.Time
	state          State
	log            *slog.Logger
}

// New creates a Backtester over the given universe and date range. tradeLog
// must be the same log the manager's executor appends to, so the Result sees
// every executed trade.
func New(
	mgr *manager.PortfolioManager,
	schedule Schedule,
	tradeLog *trading.TradeLog,
	stocks map[string]*dataset.Series,
	index *dataset.Series,
	initialCapital float64,
	start, end time.Time,
) *Backtester {
	return &Backtester{
		manager:        mgr,
		schedule:       schedule,
		portfolio:      portfolio.New(initialCapital),
		tradeLog:       tradeLog,
		stocks:         stocks,
		index:          index,
		initialCapital: initialCapital,
		start:          start,
		end:            end,
		state:          StateNotStarted,
		log:            slog.Default().With("component", "backtest"),
	}
}

// State returns the current lifecycle state.
func (b *Backtester) State() State { return b.state }

// Run replays the strategy over every trading date in the range and returns
// the collected result. Calling Run on an already started Backtester is an
// error. The context is checked once per trading date.
func (b *Backtester) Run(ctx context.Context) (*Result, error) {
	if b.state != StateNotStarted {
		return nil, fmt.Errorf("backtest: run already %s", b.state)
	}

	dates, err := dataset.TradingDates(b.stocks, b.index, b.start, b.end)
	if err != nil {
		return nil, fmt.Errorf("deriving trading calendar: %w", err)
	}

	b.state = StateRunning
	b.log.Info("backtest started",
		"start", dates[0].Format(time.DateOnly),
		"end", dates[len(dates)-1].Format(time.DateOnly),
		"dates", len(dates), "symbols", len(b.stocks),
		"capital", b.initialCapital)

	result := &Result{InitialCapital: b.initialCapital}
	benchmarkBase := 0.0
	lastMonth := time.Month(0)

	for _, date := range dates {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if b.schedule.UpdateComposition(date) {
			b.manager.UpdateComposition(b.portfolio, b.stocks, b.index, date)
		}
		if b.schedule.Rebalance(date) {
			b.manager.Rebalance(b.portfolio, b.stocks, date)
		}

		prices := dataset.ClosingPrices(b.stocks, date)
		value := b.portfolio.TotalValue(prices)
		result.Values = append(result.Values, domain.ValuePoint{Date: date, Value: value})

		if indexClose, ok := b.index.AdjCloseAt(date); ok {
			if benchmarkBase == 0 {
				benchmarkBase = indexClose
			}
			result.Benchmark = append(result.Benchmark, domain.ValuePoint{
				Date:  date,
				Value: b.initialCapital * indexClose / benchmarkBase,
			})
		}

		if date.Month() != lastMonth {
			lastMonth = date.Month()
			b.logSnapshot(date, prices, value)
		}
	}

	result.Trades = b.tradeLog.Trades()
	b.state = StateCompleted
	b.log.Info("backtest completed",
		"finalValue", result.FinalValue(), "trades", len(result.Trades))
	return result, nil
}

// logSnapshot reports the largest holdings and the cash fraction, once per
// calendar month.
func (b *Backtester) logSnapshot(date time.Time, prices map[string]float64, total float64) {
	type holding struct {
		symbol string
		weight float64
	}

	var holdings []holding
	for _, symbol := range b.portfolio.Symbols() {
		price, ok := prices[symbol]
		if !ok || total == 0 {
			continue
		}
		weight := float64(b.portfolio.Position(symbol)) * price / total
		holdings = append(holdings, holding{symbol, weight})
	}
	sort.Slice(holdings, func(i, j int) bool {
		if holdings[i].weight != holdings[j].weight {
			return holdings[i].weight > holdings[j].weight
		}
		return holdings[i].symbol < holdings[j].symbol
	})
	if len(holdings) > 5 {
		holdings = holdings[:5]
	}

	top := make([]string, len(holdings))
	for i, h := range holdings {
		top[i] = fmt.Sprintf("%s=%.1f%%", h.symbol, h.weight*100)
	}
	cashFraction := 0.0
	if total > 0 {
		cashFraction = b.portfolio.Cash() / total
	}

	b.log.Info("portfolio snapshot",
		"date", date.Format(time.DateOnly),
		"value", total,
		"positions", len(b.portfolio.Symbols()),
		"top", top,
		"cashFraction", cashFraction)
}
