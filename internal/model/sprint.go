package model

import "time"

type SprintStatus string

const (
	SprintActive    SprintStatus = "ACTIVE"
	SprintCompleted SprintStatus = "COMPLETED"
)

// Sprint groups backlog items over a date range. At most one is ACTIVE.
type Sprint struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	StartDate   string
	EndDate     string
	Goal        string
	Retro       string
	Status      SprintStatus `gorm:"index"`
	CreatedAt   time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}
