// gomentum-backtest runs the momentum strategy over the processed datasets,
// prints a performance report, and records the run in the SQLite store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gomentum/internal/analysis"
	"gomentum/internal/backtest"
	"gomentum/internal/config"
	"gomentum/internal/dataset"
	"gomentum/internal/manager"
	"gomentum/internal/store"
	"gomentum/internal/strategy"
	"gomentum/internal/trading"
	"gomentum/internal/util"
)

func main() {
	tradesCSV := flag.String("trades-csv", "", "also write the trade ledger to this CSV file")
	noSave := flag.Bool("no-save", false, "skip recording the run in SQLite")
	flag.Parse()

	cfgPath := "config/gomentum.yaml"
	if p := os.Getenv("GOMENTUM_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	util.SetDefault(util.NewLogger(cfg.Logging.Level))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	start, err := time.Parse(time.DateOnly, cfg.Data.StartDate)
	if err != nil {
		log.Fatalf("invalid data.start_date: %v", err)
	}
	end, err := time.Parse(time.DateOnly, cfg.Data.EndDate)
	if err != nil {
		log.Fatalf("invalid data.end_date: %v", err)
	}

	stocks, err := dataset.LoadDir(cfg.Storage.ProcessedDir)
	if err != nil {
		log.Fatalf("loading processed datasets: %v", err)
	}
	index, ok := stocks[cfg.Data.IndexSymbol]
	if !ok {
		log.Fatalf("index symbol %s not found in %s; run gomentum-process first",
			cfg.Data.IndexSymbol, cfg.Storage.ProcessedDir)
	}
	delete(stocks, cfg.Data.IndexSymbol)

	ranking, err := strategy.NewRankingPolicy(cfg.Strategy)
	if err != nil {
		log.Fatalf("building ranking policy: %v", err)
	}
	sizer, err := strategy.NewPositionSizer(cfg.Sizing)
	if err != nil {
		log.Fatalf("building position sizer: %v", err)
	}
	filter, err := strategy.NewMarketFilter(cfg.Filter)
	if err != nil {
		log.Fatalf("building market filter: %v", err)
	}
	rebalance, err := strategy.NewRebalancePolicy(cfg.Rebalance)
	if err != nil {
		log.Fatalf("building rebalance policy: %v", err)
	}

	tradeLog := trading.NewTradeLog()
	executor := trading.NewExecutor(trading.CostModel{
		CommissionRate: cfg.Costs.CommissionRate,
		SlippageRate:   cfg.Costs.SlippageRate,
	}, tradeLog)

	mgr := manager.New(ranking, sizer, filter, rebalance, executor, cfg.Strategy.TopFraction)
	schedule := &backtest.CalendarSchedule{
		CompositionWeekday: cfg.Backtest.Weekday(),
		RebalanceDays:      cfg.Backtest.RebalanceDays,
	}

	bt := backtest.New(mgr, schedule, tradeLog, stocks, index,
		cfg.Backtest.InitialCapital, start, end)

	result, err := bt.Run(ctx)
	if err != nil {
		log.Fatalf("backtest failed: %v", err)
	}

	analyser := analysis.NewAnalyser(cfg.Backtest.RiskFreeRate)
	report := &analysis.Report{
		Metrics: analyser.Analyse(result.Values, result.Benchmark),
		Trades:  analysis.AnalyseTrades(result.Trades, start, end),
	}
	fmt.Print(report.String())

	if *tradesCSV != "" {
		if err := tradeLog.WriteCSV(*tradesCSV); err != nil {
			log.Fatalf("writing trades CSV: %v", err)
		}
		slog.Info("trade ledger written", "path", *tradesCSV)
	}

	if *noSave {
		return
	}

	runs, err := store.OpenRunStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening run store: %v", err)
	}
	defer runs.Close()

	id, err := runs.SaveRun(ctx, store.RunSummary{
		StartDate:      start,
		EndDate:        end,
		InitialCapital: cfg.Backtest.InitialCapital,
		FinalValue:     result.FinalValue(),
		TotalReturn:    report.Metrics.TotalReturn,
		MaxDrawdown:    report.Metrics.MaxDrawdown,
		Sharpe:         report.Metrics.Sharpe.Value,
		SharpeDefined:  report.Metrics.Sharpe.Valid,
	}, result.Values, result.Benchmark, result.Trades)
	if err != nil {
		log.Fatalf("saving run: %v", err)
	}
	slog.Info("run recorded", "id", id, "db", cfg.Storage.SQLitePath)
}
