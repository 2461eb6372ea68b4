// Package dataset provides the in-memory price series container consumed by
// the backtesting core, plus indicator precomputation, CSV persistence, and
// trading-date alignment. Series data is produced by the data pipeline and
// treated as immutable input by the strategy and backtest packages.
package dataset

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gomentum/internal/domain"
)

// Series is an ordered-by-date sequence of daily bars for one symbol, with
// optional named indicator columns aligned index-for-index with the bars.
type Series struct {
	Symbol string

	bars    []domain.Bar
	columns map[string][]float64
	byDate  map[int64]int // unix day → bar index
}

// ColumnATR is the column name for the Average True Range indicator.
const ColumnATR = "ATR"

// MAColumn returns the column name for a simple moving average of the given
// window, e.g. "MA100".
func MAColumn(window int) string {
	return fmt.Sprintf("MA%d", window)
}

// NewSeries builds a Series from bars, sorting them by date. Duplicate dates
// keep the last occurrence.
func NewSeries(symbol string, bars []domain.Bar) *Series {
	sorted := make([]domain.Bar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	s := &Series{
		Symbol:  symbol,
		bars:    sorted,
		columns: make(map[string][]float64),
		byDate:  make(map[int64]int, len(sorted)),
	}
	for i, b := range sorted {
		s.byDate[dayKey(b.Date)] = i
	}
	return s
}

func dayKey(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}

// Len returns the number of bars in the series.
func (s *Series) Len() int { return len(s.bars) }

// Bar returns the bar at index i.
func (s *Series) Bar(i int) domain.Bar { return s.bars[i] }

// Bars returns the underlying bar slice. Callers must not mutate it.
func (s *Series) Bars() []domain.Bar { return s.bars }

// Index returns the bar index for the given date, matching on calendar day.
func (s *Series) Index(date time.Time) (int, bool) {
	i, ok := s.byDate[dayKey(date)]
	return i, ok
}

// SetColumn attaches an indicator column. The column must have exactly one
// value per bar.
func (s *Series) SetColumn(name string, values []float64) error {
	if len(values) != len(s.bars) {
		return fmt.Errorf("column %s has %d values for %d bars", name, len(values), len(s.bars))
	}
	s.columns[name] = values
	return nil
}

// Column returns the named indicator column, or nil if absent.
func (s *Series) Column(name string) []float64 {
	return s.columns[name]
}

// ColumnNames returns the attached indicator column names, sorted.
func (s *Series) ColumnNames() []string {
	names := make([]string, 0, len(s.columns))
	for name := range s.columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Value returns the named column's value on the given date. The second
// return is false when the column or date is absent, or the value is NaN
// (indicator warm-up period).
func (s *Series) Value(column string, date time.Time) (float64, bool) {
	col, ok := s.columns[column]
	if !ok {
		return 0, false
	}
	i, ok := s.Index(date)
	if !ok {
		return 0, false
	}
	v := col[i]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// AdjCloseAt returns the adjusted close on the given date.
func (s *Series) AdjCloseAt(date time.Time) (float64, bool) {
	i, ok := s.Index(date)
	if !ok {
		return 0, false
	}
	return s.bars[i].AdjClose, true
}

// UpTo returns a view of the series containing every bar dated at or before
// the given date. The view shares underlying storage with the receiver.
func (s *Series) UpTo(date time.Time) *Series {
	key := dayKey(date)
	n := sort.Search(len(s.bars), func(i int) bool {
		return dayKey(s.bars[i].Date) > key
	})

	view := &Series{
		Symbol:  s.Symbol,
		bars:    s.bars[:n],
		columns: make(map[string][]float64, len(s.columns)),
		byDate:  make(map[int64]int, n),
	}
	for name, col := range s.columns {
		view.columns[name] = col[:n]
	}
	for i := 0; i < n; i++ {
		view.byDate[dayKey(s.bars[i].Date)] = i
	}
	return view
}

// ClosingPrices collects the adjusted close of every symbol that has a bar
// on the given date. Symbols without data for that date are excluded.
func ClosingPrices(stocks map[string]*Series, date time.Time) map[string]float64 {
	prices := make(map[string]float64, len(stocks))
	for symbol, s := range stocks {
		if price, ok := s.AdjCloseAt(date); ok {
			prices[symbol] = price
		}
	}
	return prices
}
