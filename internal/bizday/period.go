package bizday

import (
	"fmt"
	"time"
)

// Period is the window a goal counter accumulates over.
type Period string

const (
	PeriodWeekly  Period = "WEEKLY"
	PeriodMonthly Period = "MONTHLY"
)

func (p Period) Valid() bool {
	return p == PeriodWeekly || p == PeriodMonthly
}

// PeriodKey identifies the ISO week or calendar month containing t, computed in
// local time. Two instants share a key exactly when they fall in the same window.
func PeriodKey(t time.Time, p Period) string {
	local := t.In(Location)
	if p == PeriodMonthly {
		return fmt.Sprintf("%04d-%02d", local.Year(), int(local.Month()))
	}
	year, week := local.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// SamePeriod reports whether a and b fall into the same window of p.
func SamePeriod(a, b time.Time, p Period) bool {
	return PeriodKey(a, p) == PeriodKey(b, p)
}

// DaysInMonth returns the number of days of the month containing t.
func DaysInMonth(t time.Time) int {
	// Move to next month, roll back a day.
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}
