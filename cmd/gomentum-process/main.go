// gomentum-process turns raw stored bars into backtest-ready datasets: it
// loads each symbol's bars from the Parquet store, computes the moving
// average and ATR indicator columns, and writes one CSV per symbol to the
// processed directory.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gomentum/internal/config"
	"gomentum/internal/dataset"
	"gomentum/internal/store"
	"gomentum/internal/util"
)

func main() {
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

	bars := store.NewParquetStore(cfg.Storage.DataDir)
	symbols, err := bars.ListSymbols(ctx)
	if err != nil {
		log.Fatalf("listing symbols: %v", err)
	}
	if len(symbols) == 0 {
		log.Fatal("no stored symbols; run gomentum-data first")
	}

	maWindows := []int{cfg.Strategy.TrendWindow, cfg.Filter.Window}

	if err := os.MkdirAll(cfg.Storage.ProcessedDir, 0o755); err != nil {
		log.Fatalf("creating processed dir: %v", err)
	}

	processed := 0
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			log.Fatalf("interrupted: %v", ctx.Err())
		}

		raw, err := bars.ReadBars(ctx, symbol, start, end)
		if err != nil {
			log.Fatalf("reading bars for %s: %v", symbol, err)
		}
		if len(raw) == 0 {
			continue
		}

		s := dataset.NewSeries(symbol, raw)
		if err := dataset.AddIndicators(s, maWindows, cfg.Data.ATRWindow); err != nil {
			slog.Warn("skipping symbol", "symbol", symbol, "error", err)
			continue
		}

		out := filepath.Join(cfg.Storage.ProcessedDir, symbol+".csv")
		if err := dataset.WriteSeriesCSV(out, s); err != nil {
			log.Fatalf("writing %s: %v", out, err)
		}
		processed++
	}

	slog.Info("processing complete", "symbols", processed, "dir", cfg.Storage.ProcessedDir)
}
