package dataset

import (
	"math"

	"gomentum/internal/domain"
)

// SMA computes a simple moving average over the given window. Positions with
// fewer than window observations are NaN (indicator warm-up).
func SMA(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i := range values {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// ATR computes the Average True Range over the given window: the rolling
// mean of the true range, where the true range is the greatest of high−low,
// |high−previous adjusted close| and |low−previous adjusted close|. The
// first bar's true range falls back to high−low.
func ATR(bars []domain.Bar, window int) []float64 {
	tr := make([]float64, len(bars))
	for i, b := range bars {
		hl := b.High - b.Low
		if i == 0 {
			tr[i] = hl
			continue
		}
		prev := bars[i-1].AdjClose
		hc := math.Abs(b.High - prev)
		lc := math.Abs(b.Low - prev)
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return SMA(tr, window)
}

// AddIndicators computes and attaches the indicator columns required by the
// strategy policies: one MA column per requested window plus the ATR column.
func AddIndicators(s *Series, maWindows []int, atrWindow int) error {
	closes := make([]float64, s.Len())
	for i := range closes {
		closes[i] = s.Bar(i).AdjClose
	}

	for _, w := range maWindows {
		if err := s.SetColumn(MAColumn(w), SMA(closes, w)); err != nil {
			return err
		}
	}
	return s.SetColumn(ColumnATR, ATR(s.Bars(), atrWindow))
}
