package model

import "time"

// BacklogStatus tracks where a backlog item is in its life.
type BacklogStatus string

const (
	BacklogStock   BacklogStatus = "STOCK"
	BacklogPending BacklogStatus = "PENDING"
	BacklogDone    BacklogStatus = "DONE"
)

func (s BacklogStatus) Valid() bool {
	switch s {
	case BacklogStock, BacklogPending, BacklogDone:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// BacklogItem is a task not yet (or no longer) bound to a specific day.
type BacklogItem struct {
	ID            string `gorm:"primaryKey"`
	Title         string `gorm:"not null"`
	Category      string `gorm:"index"`
	Priority      Priority
	Status        BacklogStatus `gorm:"index"`
	Order         int           `gorm:"column:sort_order"`
	IsArchived    bool          `gorm:"index;default:false"`
	IsHighlighted bool          `gorm:"default:false"`
	Deadline      *time.Time
	ScheduledDate *time.Time
	// Place only means something for CategoryFood.
	Place        string
	IsPetAllowed bool    `gorm:"default:false"`
	SprintID     *string `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
