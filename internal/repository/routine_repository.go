package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"habit-planner/internal/model"
)

// RoutineRepository handles the routines collection.
type RoutineRepository struct {
	db *gorm.DB
}

func NewRoutineRepository(db *gorm.DB) *RoutineRepository {
	return &RoutineRepository{db: db}
}

func (r *RoutineRepository) Create(ctx context.Context, routine *model.Routine) error {
	if err := r.db.WithContext(ctx).Create(routine).Error; err != nil {
		return fmt.Errorf("create routine: %w", err)
	}
	return nil
}

func (r *RoutineRepository) FindByID(ctx context.Context, id string) (*model.Routine, error) {
	var routine model.Routine
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&routine).Error; err != nil {
		return nil, err
	}
	return &routine, nil
}

// FindByIDs loads the routines with the given ids, querying at most
// maxInValues ids at a time. Missing ids are absent from the result.
func (r *RoutineRepository) FindByIDs(ctx context.Context, ids []string) (map[string]model.Routine, error) {
	out := make(map[string]model.Routine, len(ids))
	for _, part := range chunk(ids, maxInValues) {
		var routines []model.Routine
		if err := r.db.WithContext(ctx).Where("id IN ?", part).Find(&routines).Error; err != nil {
			return nil, fmt.Errorf("find routines: %w", err)
		}
		for _, routine := range routines {
			out[routine.ID] = routine
		}
	}
	return out, nil
}

// List returns routines, optionally restricted to one type.
func (r *RoutineRepository) List(ctx context.Context, routineType model.RoutineType) ([]model.Routine, error) {
	q := r.db.WithContext(ctx)
	if routineType != "" {
		q = q.Where("routine_type = ?", routineType)
	}
	var routines []model.Routine
	if err := q.Order("scheduled_time ASC, created_at ASC").Find(&routines).Error; err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	return routines, nil
}

// Save writes every field of routine.
func (r *RoutineRepository) Save(ctx context.Context, routine *model.Routine) error {
	if err := r.db.WithContext(ctx).Save(routine).Error; err != nil {
		return fmt.Errorf("save routine %s: %w", routine.ID, err)
	}
	return nil
}

// UpdateStats writes only the goal counters of routine.
func (r *RoutineRepository) UpdateStats(ctx context.Context, routine *model.Routine) error {
	if err := r.db.WithContext(ctx).Model(routine).Select("Stats", "UpdatedAt").Updates(routine).Error; err != nil {
		return fmt.Errorf("update routine stats %s: %w", routine.ID, err)
	}
	return nil
}

func (r *RoutineRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Routine{})
	if res.Error != nil {
		return fmt.Errorf("delete routine %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
