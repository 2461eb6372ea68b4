package gather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"gomentum/internal/domain"
	"gomentum/internal/store"
	"gomentum/internal/util"
)

// Compile-time interface check.
var _ Gatherer = (*DailyBarGatherer)(nil)

// fetchFunc fetches daily bars for a batch of symbols.
type fetchFunc func(ctx context.Context, symbols []string, start, end time.Time) ([]domain.Bar, error)

// DailyBarGatherer downloads daily OHLCV bars for a symbol universe from the
// Alpaca market-data API and writes them to the bar store. Prices are
// requested with full split and dividend adjustment.
type DailyBarGatherer struct {
	store      store.BarStore
	symbols    []string
	batchSize  int
	start, end time.Time
	limiter    *util.RateLimiter
	fetch      fetchFunc
	log        *slog.Logger
}

// NewDailyBarGatherer creates a gatherer for the given symbols and date
// range. An empty symbol list falls back to the symbols already present in
// the store.
func NewDailyBarGatherer(apiKey, apiSecret, dataURL string, s store.BarStore, symbols []string, batchSize, ratePerMinute int, start, end time.Time) *DailyBarGatherer {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	client := marketdata.NewClient(opts)

	g := &DailyBarGatherer{
		store:     s,
		symbols:   symbols,
		batchSize: batchSize,
		start:     start,
		end:       end,
		limiter:   util.NewRateLimiter(ratePerMinute),
		log:       slog.Default().With("gatherer", "daily-bars"),
	}
	g.fetch = func(ctx context.Context, symbols []string, start, end time.Time) ([]domain.Bar, error) {
		return fetchMultiBars(ctx, client, symbols, start, end)
	}
	return g
}

// Name returns the gatherer identifier.
func (g *DailyBarGatherer) Name() string { return "daily-bars" }

// Run fetches bars batch by batch and writes each batch to the store before
// moving on, so an interrupted run loses at most one batch.
func (g *DailyBarGatherer) Run(ctx context.Context) error {
	symbols := g.symbols
	if len(symbols) == 0 {
		stored, err := g.store.ListSymbols(ctx)
		if err != nil {
			return fmt.Errorf("listing stored symbols: %w", err)
		}
		symbols = stored
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols to gather")
	}

	batches := batchSymbols(symbols, g.batchSize)
	g.log.Info("starting daily-bars",
		"symbols", len(symbols), "batches", len(batches),
		"start", g.start.Format(time.DateOnly), "end", g.end.Format(time.DateOnly))

	runStart := time.Now()
	for i, batch := range batches {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}

		var bars []domain.Bar
		err := util.Retry(ctx, 3, time.Second, func() error {
			var err error
			bars, err = g.fetch(ctx, batch, g.start, g.end)
			return err
		})
		if err != nil {
			return fmt.Errorf("fetching batch %d/%d: %w", i+1, len(batches), err)
		}

		if err := g.store.WriteBars(ctx, bars); err != nil {
			return fmt.Errorf("writing batch %d/%d: %w", i+1, len(batches), err)
		}

		g.log.Info("batch done",
			"batch", fmt.Sprintf("%d/%d", i+1, len(batches)),
			"bars", len(bars),
			"elapsed", time.Since(runStart).Round(time.Second))
	}
	return nil
}

// batchSymbols splits symbols into slices of at most size elements.
func batchSymbols(symbols []string, size int) [][]string {
	if size <= 0 {
		size = len(symbols)
	}
	var batches [][]string
	for i := 0; i < len(symbols); i += size {
		end := min(i+size, len(symbols))
		batches = append(batches, symbols[i:end])
	}
	return batches
}

// fetchMultiBars fetches adjusted daily bars for multiple symbols in a
// single API call.
func fetchMultiBars(ctx context.Context, client *marketdata.Client, symbols []string, start, end time.Time) ([]domain.Bar, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	multiBars, err := client.GetMultiBars(symbols, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.All,
		Start:      start,
		End:        end,
		Feed:       "sip",
	})
	if err != nil {
		return nil, fmt.Errorf("GetMultiBars: %w", err)
	}

	var bars []domain.Bar
	for symbol, alpacaBars := range multiBars {
		for _, ab := range alpacaBars {
			bars = append(bars, domain.Bar{
				Symbol:   strings.ToUpper(symbol),
				Date:     ab.Timestamp.UTC().Truncate(24 * time.Hour),
				Open:     ab.Open,
				High:     ab.High,
				Low:      ab.Low,
				Close:    ab.Close,
				AdjClose: ab.Close, // prices already carry full adjustment
				Volume:   int64(ab.Volume),
			})
		}
	}
	return bars, nil
}
