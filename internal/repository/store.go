package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the per-collection repositories over one connection or transaction.
type Store struct {
	db       *gorm.DB
	Backlog  *BacklogRepository
	Daily    *DailyTaskRepository
	Routines *RoutineRepository
	Sprints  *SprintRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Backlog:  NewBacklogRepository(db),
		Daily:    NewDailyTaskRepository(db),
		Routines: NewRoutineRepository(db),
		Sprints:  NewSprintRepository(db),
	}
}

// Batch runs fn against repositories bound to a single transaction. Every write
// made through tx commits together, or none does when fn returns an error.
func (s *Store) Batch(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
