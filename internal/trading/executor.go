package trading

import (
	"fmt"
	"log/slog"
	"time"

	"gomentum/internal/domain"
	"gomentum/internal/portfolio"
)

// Executor applies buy and sell decisions to the portfolio ledger. It is the
// only component that mutates the ledger: it checks affordability and share
// availability, charges transaction costs, and appends to the trade log.
// Rejected trades are an expected outcome and reported as a false return,
// not an error.
type Executor struct {
	costs    CostModel
	tradeLog *TradeLog
	log      *slog.Logger
}

// NewExecutor creates an Executor charging costs per the given model and
// appending executed trades to tradeLog. tradeLog may be nil when no ledger
// is wanted.
func NewExecutor(costs CostModel, tradeLog *TradeLog) *Executor {
	return &Executor{
		costs:    costs,
		tradeLog: tradeLog,
		log:      slog.Default().With("component", "executor"),
	}
}

// ExecuteBuy buys quantity shares of symbol at price on date. It returns
// false without mutating the ledger when the total cost including
// transaction costs exceeds available cash.
func (e *Executor) ExecuteBuy(p *portfolio.Portfolio, symbol string, quantity int64, price float64, date time.Time) bool {
	if quantity <= 0 {
		return false
	}

	costs := e.costs.Costs(price, quantity)
	total := price*float64(quantity) + costs

	if total > p.Cash() {
		e.log.Warn("insufficient cash to buy",
			"symbol", symbol, "required", total, "available", p.Cash())
		return false
	}

	p.AddPosition(symbol, quantity)
	mustSetCash(p, p.Cash()-total)
	e.record(domain.Trade{
		Date: date, Symbol: symbol, Action: domain.ActionBuy,
		Quantity: quantity, Price: price, Costs: costs,
	})

	e.log.Info("bought",
		"symbol", symbol, "shares", quantity, "price", price, "costs", costs)
	return true
}

// ExecuteSell sells quantity shares of symbol at price on date. It returns
// false without mutating the ledger when the portfolio holds fewer than
// quantity shares.
func (e *Executor) ExecuteSell(p *portfolio.Portfolio, symbol string, quantity int64, price float64, date time.Time) bool {
	if quantity <= 0 {
		return false
	}

	if p.Position(symbol) < quantity {
		e.log.Warn("insufficient shares to sell",
			"symbol", symbol, "required", quantity, "available", p.Position(symbol))
		return false
	}

	costs := e.costs.Costs(price, quantity)
	proceeds := price*float64(quantity) - costs

	p.AddPosition(symbol, -quantity)
	mustSetCash(p, p.Cash()+proceeds)
	e.record(domain.Trade{
		Date: date, Symbol: symbol, Action: domain.ActionSell,
		Quantity: quantity, Price: price, Costs: costs,
	})

	e.log.Info("sold",
		"symbol", symbol, "shares", quantity, "price", price, "costs", costs)
	return true
}

func (e *Executor) record(t domain.Trade) {
	if e.tradeLog != nil {
		e.tradeLog.Append(t)
	}
}

// mustSetCash applies a cash mutation that the caller has already verified
// cannot go negative. Failure here is an invariant violation, not an
// expected trading outcome, so it aborts the run.
func mustSetCash(p *portfolio.Portfolio, value float64) {
	if err := p.SetCash(value); err != nil {
		panic(fmt.Sprintf("trading: ledger invariant violated: %v", err))
	}
}
