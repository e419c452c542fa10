package bizday

import (
	"fmt"
	"time"
)

// Location is the fixed civil calendar all "today" math runs in. No DST applies.
var Location = time.FixedZone("UTC+9", 9*60*60)

// CutoverHour is the local hour at which the business day rolls over.
const CutoverHour = 5

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
	isoLayout   = "2006-01-02T15:04:05.000Z"
)

// Resolver answers "what day is it" questions against an injectable clock.
type Resolver struct {
	now func() time.Time
}

func NewResolver(now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{now: now}
}

// Now returns the current instant in Location.
func (r *Resolver) Now() time.Time {
	return r.now().In(Location)
}

// Today returns the local calendar date.
func (r *Resolver) Today() string {
	return TodayAt(r.now())
}

// BusinessDate returns the logical date of the daily board.
func (r *Resolver) BusinessDate() string {
	return BusinessDateAt(r.now())
}

// ClockTime returns the local wall clock as HH:MM.
func (r *Resolver) ClockTime() string {
	return r.Now().Format(ClockLayout)
}

func TodayAt(t time.Time) string {
	return t.In(Location).Format(DateLayout)
}

// BusinessDateAt returns the local date of t, or the previous date while the
// local clock is before CutoverHour.
func BusinessDateAt(t time.Time) string {
	local := t.In(Location)
	if local.Hour() < CutoverHour {
		local = local.AddDate(0, 0, -1)
	}
	return local.Format(DateLayout)
}

// FormatDate renders t as a local calendar date.
func FormatDate(t time.Time) string {
	return t.In(Location).Format(DateLayout)
}

// FormatDatePtr is FormatDate for optional timestamps; nil yields "".
func FormatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDate(*t)
}

// ParseDate parses YYYY-MM-DD as local midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

func AddDays(date string, days int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(DateLayout), nil
}

// ValidClock reports whether s is a HH:MM wall-clock time.
func ValidClock(s string) bool {
	if len(s) != len(ClockLayout) {
		return false
	}
	_, err := time.Parse(ClockLayout, s)
	return err == nil
}

// ISO renders t the way every API response carries timestamps.
func ISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

func ISOPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := ISO(*t)
	return &s
}
