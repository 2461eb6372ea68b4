package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gomentum/internal/domain"
)

// Processed datasets are stored one CSV per symbol, named <SYMBOL>.csv, with
// the fixed bar columns followed by any indicator columns:
//
//	Date,Open,High,Low,Close,Adj Close,Volume[,MA100,MA200,ATR,...]
//
// Dates use the 2006-01-02 layout. Indicator warm-up values are written as
// empty fields and read back as NaN.

const dateLayout = "2006-01-02"

var barHeader = []string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"}

// WriteSeriesCSV writes a series (bars plus indicator columns) to path.
func WriteSeriesCSV(path string, s *Series) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	names := s.ColumnNames()
	header := append(append([]string{}, barHeader...), names...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i < s.Len(); i++ {
		b := s.Bar(i)
		row := []string{
			b.Date.Format(dateLayout),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.AdjClose),
			strconv.FormatInt(b.Volume, 10),
		}
		for _, name := range names {
			v := s.Column(name)[i]
			if math.IsNaN(v) {
				row = append(row, "")
			} else {
				row = append(row, formatFloat(v))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadSeriesCSV reads a series from path. The symbol is taken from the file
// name without extension. Columns beyond the fixed bar columns are attached
// as indicator columns.
func ReadSeriesCSV(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty dataset file: %s", path)
	}

	header := rows[0]
	if len(header) < len(barHeader) {
		return nil, fmt.Errorf("%s: expected at least %d columns, got %d", path, len(barHeader), len(header))
	}
	extras := header[len(barHeader):]

	symbol := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	bars := make([]domain.Bar, 0, len(rows)-1)
	extraVals := make([][]float64, len(extras))

	for _, row := range rows[1:] {
		date, err := time.Parse(dateLayout, row[0])
		if err != nil {
			return nil, fmt.Errorf("%s: bad date %q: %w", path, row[0], err)
		}
		volume, err := strconv.ParseInt(row[6], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad volume %q: %w", path, row[6], err)
		}
		bar := domain.Bar{Symbol: symbol, Date: date, Volume: volume}
		for i, dst := range []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.AdjClose} {
			v, err := strconv.ParseFloat(row[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%s: bad value %q: %w", path, row[i+1], err)
			}
			*dst = v
		}
		bars = append(bars, bar)

		for i := range extras {
			cell := row[len(barHeader)+i]
			if cell == "" {
				extraVals[i] = append(extraVals[i], math.NaN())
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: bad %s value %q: %w", path, extras[i], cell, err)
			}
			extraVals[i] = append(extraVals[i], v)
		}
	}

	s := NewSeries(symbol, bars)
	for i, name := range extras {
		if err := s.SetColumn(name, extraVals[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadDir reads every *.csv file in dir into a symbol→series map.
func LoadDir(dir string) (map[string]*Series, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*Series)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		s, err := ReadSeriesCSV(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out[s.Symbol] = s
	}
	return out, nil
}

// formatFloat renders a float with full round-trip precision.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// SortedSymbols returns the map's keys in ascending order, for deterministic
// iteration.
func SortedSymbols(stocks map[string]*Series) []string {
	symbols := make([]string, 0, len(stocks))
	for s := range stocks {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}
