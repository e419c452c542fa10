package model

import (
	"fmt"
	"time"

	"habit-planner/internal/bizday"
)

type RoutineType string

const (
	// RoutineAction expands into daily tasks.
	RoutineAction RoutineType = "ACTION"
	// RoutineMindset is informational only and never expands.
	RoutineMindset RoutineType = "MINDSET"
)

func (t RoutineType) Valid() bool {
	return t == RoutineAction || t == RoutineMindset
}

type FrequencyType string

const (
	FrequencyDaily   FrequencyType = "DAILY"
	FrequencyWeekly  FrequencyType = "WEEKLY"
	FrequencyMonthly FrequencyType = "MONTHLY"
)

// DefaultScheduledTime is when a routine fires unless configured otherwise.
const DefaultScheduledTime = "05:00"

// Frequency says on which days a routine fires. Weekdays use 0 for Sunday.
type Frequency struct {
	Type      FrequencyType `json:"type"`
	Weekdays  []int         `json:"weekdays,omitempty"`
	MonthDays []int         `json:"month_days,omitempty"`
}

func (f Frequency) Validate() error {
	switch f.Type {
	case FrequencyDaily:
		return nil
	case FrequencyWeekly:
		if len(f.Weekdays) == 0 {
			return fmt.Errorf("weekly frequency needs at least one weekday")
		}
		for _, d := range f.Weekdays {
			if d < 0 || d > 6 {
				return fmt.Errorf("weekday %d out of range 0-6", d)
			}
		}
		return nil
	case FrequencyMonthly:
		if len(f.MonthDays) == 0 {
			return fmt.Errorf("monthly frequency needs at least one day")
		}
		for _, d := range f.MonthDays {
			if d < 1 || d > 31 {
				return fmt.Errorf("month day %d out of range 1-31", d)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown frequency %q", f.Type)
	}
}

// Matches reports whether the routine fires on the local calendar day of day.
// Month days past the end of a short month fire on its last day.
func (f Frequency) Matches(day time.Time) bool {
	local := day.In(bizday.Location)
	switch f.Type {
	case FrequencyDaily:
		return true
	case FrequencyWeekly:
		wd := int(local.Weekday())
		for _, d := range f.Weekdays {
			if d == wd {
				return true
			}
		}
	case FrequencyMonthly:
		last := bizday.DaysInMonth(local)
		for _, d := range f.MonthDays {
			if d > last {
				d = last
			}
			if d == local.Day() {
				return true
			}
		}
	}
	return false
}

// GoalConfig asks for TargetCount completions per Period.
type GoalConfig struct {
	Period      bizday.Period `json:"period"`
	TargetCount int           `json:"target_count"`
}

// RoutineStats holds the completion counters backing a GoalConfig.
type RoutineStats struct {
	WeeklyCount  int        `json:"weekly_count"`
	MonthlyCount int        `json:"monthly_count"`
	LastUpdated  *time.Time `json:"last_updated,omitempty"`
}

// Count returns the counter matching p as of now, treating counters from an
// earlier period as zero.
func (s *RoutineStats) Count(p bizday.Period, now time.Time) int {
	if s == nil || s.LastUpdated == nil || !bizday.SamePeriod(*s.LastUpdated, now, p) {
		return 0
	}
	if p == bizday.PeriodMonthly {
		return s.MonthlyCount
	}
	return s.WeeklyCount
}

// Routine is a recurring template.
type Routine struct {
	ID            string      `gorm:"primaryKey"`
	Title         string      `gorm:"not null"`
	RoutineType   RoutineType `gorm:"index"`
	Frequency     Frequency   `gorm:"serializer:json"`
	ScheduledTime string
	Icon          string
	IsHighlighted bool          `gorm:"default:false"`
	GoalConfig    *GoalConfig   `gorm:"serializer:json"`
	Stats         *RoutineStats `gorm:"serializer:json"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ApplyCompletion moves the goal counter by one completion (or un-completion)
// at now. Counters reset first when now is in a different period than the
// last update. It is a no-op without a goal.
func (r *Routine) ApplyCompletion(completed bool, now time.Time) bool {
	if r.GoalConfig == nil {
		return false
	}
	stats := r.Stats
	if stats == nil {
		stats = &RoutineStats{}
	}
	period := r.GoalConfig.Period
	if stats.LastUpdated == nil || !bizday.SamePeriod(*stats.LastUpdated, now, period) {
		stats.WeeklyCount = 0
		stats.MonthlyCount = 0
	}

	counter := &stats.WeeklyCount
	if period == bizday.PeriodMonthly {
		counter = &stats.MonthlyCount
	}
	if completed {
		*counter++
	} else if *counter > 0 {
		*counter--
	}

	updated := now
	stats.LastUpdated = &updated
	r.Stats = stats
	return true
}
