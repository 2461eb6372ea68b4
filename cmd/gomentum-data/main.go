// gomentum-data downloads daily bars for the configured symbol universe into
// the Parquet store. With -universe it refreshes the universe file from the
// Alpaca assets API instead.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gomentum/internal/config"
	"gomentum/internal/gather"
	"gomentum/internal/store"
	"gomentum/internal/util"
)

func main() {
	universeOnly := flag.Bool("universe", false, "refresh the universe file and exit")
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

	universePath := filepath.Join(cfg.Storage.DataDir, "universe.txt")

	if *universeOnly {
		g := gather.NewUniverseGatherer(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, universePath)
		if err := g.Run(ctx); err != nil {
			log.Fatalf("universe gatherer failed: %v", err)
		}
		return
	}

	start, err := time.Parse(time.DateOnly, cfg.Data.StartDate)
	if err != nil {
		log.Fatalf("invalid data.start_date: %v", err)
	}
	end, err := time.Parse(time.DateOnly, cfg.Data.EndDate)
	if err != nil {
		log.Fatalf("invalid data.end_date: %v", err)
	}

	// Symbol precedence: explicit config list, then the universe file.
	symbols := cfg.Data.Symbols
	if len(symbols) == 0 {
		if fromFile, err := gather.ReadUniverseFile(universePath); err == nil {
			symbols = fromFile
		}
	}
	if cfg.Data.IndexSymbol != "" {
		symbols = append(symbols, cfg.Data.IndexSymbol)
	}

	g := gather.NewDailyBarGatherer(
		cfg.Alpaca.APIKey,
		cfg.Alpaca.APISecret,
		cfg.Alpaca.DataURL,
		store.NewParquetStore(cfg.Storage.DataDir),
		symbols,
		cfg.Data.BatchSize,
		cfg.Data.RateLimitPerMin,
		start,
		end,
	)
	if err := g.Run(ctx); err != nil {
		log.Fatalf("daily-bar gatherer failed: %v", err)
	}
}
