// Package store persists market data and backtest results. Daily bars live
// in Parquet files partitioned by symbol and year; completed runs, their
// value series, and their trade ledgers are recorded in SQLite.
package store

import (
	"context"
	"time"

	"gomentum/internal/domain"
)

// BarStore reads and writes daily bar data.
type BarStore interface {
	// WriteBars persists bars, merging with and deduplicating against any
	// previously stored data for the same symbol and date.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns the stored bars for symbol within [start, end],
	// ordered by date. A symbol with no stored data yields an empty slice.
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns every symbol with stored bar data, sorted.
	ListSymbols(ctx context.Context) ([]string, error)
}
