package backtest

import "time"

// Schedule decides which strategy steps run on a given trading date. It is
// injected so tests can force steps onto arbitrary dates.
type Schedule interface {
	// UpdateComposition reports whether the portfolio composition is
	// refreshed on date.
	UpdateComposition(date time.Time) bool

	// Rebalance reports whether held positions are re-sized on date.
	Rebalance(date time.Time) bool
}

// Compile-time interface check.
var _ Schedule = (*CalendarSchedule)(nil)

// CalendarSchedule runs the composition update on a fixed weekday and the
// rebalance on fixed calendar days of each month.
type CalendarSchedule struct {
	CompositionWeekday time.Weekday
	RebalanceDays      []int
}

// NewCalendarSchedule returns the standard cadence: composition updates on
// Wednesdays, rebalances on the 1st and 15th.
func NewCalendarSchedule() *CalendarSchedule {
	return &CalendarSchedule{
		CompositionWeekday: time.Wednesday,
		RebalanceDays:      []int{1, 15},
	}
}

func (c *CalendarSchedule) UpdateComposition(date time.Time) bool {
	return date.Weekday() == c.CompositionWeekday
}

func (c *CalendarSchedule) Rebalance(date time.Time) bool {
	for _, d := range c.RebalanceDays {
		if date.Day() == d {
			return true
		}
	}
	return false
}
