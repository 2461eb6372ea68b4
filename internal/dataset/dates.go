package dataset

import (
	"errors"
	"sort"
	"time"

	"gomentum/internal/domain"
)

// TradingDates returns the sorted union of all bar dates across the stock
// universe and the benchmark index, restricted to [start, end]. Each calendar
// day appears once, normalized to midnight UTC, regardless of the clock times
// carried by the bars that contributed it. An error is returned when the
// window contains no dates at all.
func TradingDates(stocks map[string]*Series, index *Series, start, end time.Time) ([]time.Time, error) {
	seen := make(map[int64]struct{})

	collect := func(s *Series) {
		for _, b := range s.Bars() {
			if b.Date.Before(start) || b.Date.After(end) {
				continue
			}
			seen[dayKey(b.Date)] = struct{}{}
		}
	}
	for _, s := range stocks {
		collect(s)
	}
	if index != nil {
		collect(index)
	}

	if len(seen) == 0 {
		return nil, errors.New("no trading dates found in the specified date range")
	}

	dates := make([]time.Time, 0, len(seen))
	for key := range seen {
		dates = append(dates, time.Unix(key, 0).UTC())
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// Align returns a copy of the series restricted to the given dates, with
// indicator columns filtered alongside the bars.
func Align(s *Series, dates []time.Time) *Series {
	keep := make(map[int64]bool, len(dates))
	for _, d := range dates {
		keep[dayKey(d)] = true
	}

	var indices []int
	for i := 0; i < s.Len(); i++ {
		if keep[dayKey(s.Bar(i).Date)] {
			indices = append(indices, i)
		}
	}

	bars := make([]domain.Bar, len(indices))
	for j, i := range indices {
		bars[j] = s.Bar(i)
	}

	filtered := NewSeries(s.Symbol, bars)
	for _, name := range s.ColumnNames() {
		col := s.Column(name)
		vals := make([]float64, len(indices))
		for j, i := range indices {
			vals[j] = col[i]
		}
		// Column length matches by construction.
		_ = filtered.SetColumn(name, vals)
	}
	return filtered
}
