package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"habit-planner/internal/model"
)

// SprintRepository handles the sprints collection.
type SprintRepository struct {
	db *gorm.DB
}

func NewSprintRepository(db *gorm.DB) *SprintRepository {
	return &SprintRepository{db: db}
}

// Create inserts sprint. A second ACTIVE sprint fails with gorm.ErrDuplicatedKey.
func (r *SprintRepository) Create(ctx context.Context, sprint *model.Sprint) error {
	if err := r.db.WithContext(ctx).Create(sprint).Error; err != nil {
		return fmt.Errorf("create sprint: %w", err)
	}
	return nil
}

func (r *SprintRepository) FindByID(ctx context.Context, id string) (*model.Sprint, error) {
	var sprint model.Sprint
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&sprint).Error; err != nil {
		return nil, err
	}
	return &sprint, nil
}

// FindActive returns the ACTIVE sprint, or nil when there is none.
func (r *SprintRepository) FindActive(ctx context.Context) (*model.Sprint, error) {
	var sprint model.Sprint
	err := r.db.WithContext(ctx).Where("status = ?", model.SprintActive).First(&sprint).Error
	switch {
	case err == nil:
		return &sprint, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find active sprint: %w", err)
	}
}

func (r *SprintRepository) List(ctx context.Context) ([]model.Sprint, error) {
	var sprints []model.Sprint
	if err := r.db.WithContext(ctx).Order("start_date DESC, created_at DESC").Find(&sprints).Error; err != nil {
		return nil, fmt.Errorf("list sprints: %w", err)
	}
	return sprints, nil
}

// Update writes the given columns. It returns gorm.ErrRecordNotFound when no
// sprint has the id.
func (r *SprintRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Sprint{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update sprint %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *SprintRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Sprint{})
	if res.Error != nil {
		return fmt.Errorf("delete sprint %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
