package model

import "time"

type SourceType string

const (
	SourceBacklog SourceType = "BACKLOG"
	SourceRoutine SourceType = "ROUTINE"
)

type DailyStatus string

const (
	DailyTodo    DailyStatus = "TODO"
	DailyDone    DailyStatus = "DONE"
	DailySkipped DailyStatus = "SKIPPED"
)

// DailyTask is a date-bound occurrence of a backlog item or routine.
// Its ID is derived from the source and the date, see DailyTaskID.
type DailyTask struct {
	ID            string      `gorm:"primaryKey"`
	SourceID      string      `gorm:"index:idx_daily_source,priority:1"`
	SourceType    SourceType  `gorm:"index:idx_daily_source,priority:2"`
	TargetDate    string      `gorm:"index"`
	Status        DailyStatus `gorm:"index"`
	Title         string
	Order         int  `gorm:"column:sort_order"`
	IsHighlighted bool `gorm:"default:false"`
	CreatedAt     time.Time
	CompletedAt   *time.Time
	UpdatedAt     time.Time
}

// DailyTaskID is the composite key of the occurrence of sourceID on date.
func DailyTaskID(sourceID, date string) string {
	return sourceID + "_" + date
}
