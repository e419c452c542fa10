package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"habit-planner/internal/model"
)

// DailyTaskRepository handles the daily_tasks collection.
type DailyTaskRepository struct {
	db *gorm.DB
}

func NewDailyTaskRepository(db *gorm.DB) *DailyTaskRepository {
	return &DailyTaskRepository{db: db}
}

func (r *DailyTaskRepository) Create(ctx context.Context, task *model.DailyTask) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create daily task %s: %w", task.ID, err)
	}
	return nil
}

// Save inserts task or overwrites the existing document with the same id.
func (r *DailyTaskRepository) Save(ctx context.Context, task *model.DailyTask) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save daily task %s: %w", task.ID, err)
	}
	return nil
}

func (r *DailyTaskRepository) FindByID(ctx context.Context, id string) (*model.DailyTask, error) {
	var task model.DailyTask
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *DailyTaskRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.FindByID(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("find daily task %s: %w", id, err)
	}
}

// ListByDate returns every task targeted at date, whatever its status.
func (r *DailyTaskRepository) ListByDate(ctx context.Context, date string) ([]model.DailyTask, error) {
	var tasks []model.DailyTask
	if err := r.db.WithContext(ctx).Where("target_date = ?", date).
		Order("sort_order ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list daily tasks for %s: %w", date, err)
	}
	return tasks, nil
}

// ListOpenBefore returns TODO tasks from any date earlier than date.
func (r *DailyTaskRepository) ListOpenBefore(ctx context.Context, date string) ([]model.DailyTask, error) {
	var tasks []model.DailyTask
	if err := r.db.WithContext(ctx).
		Where("status = ? AND target_date < ?", model.DailyTodo, date).
		Order("target_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list overdue daily tasks before %s: %w", date, err)
	}
	return tasks, nil
}

// ListBySourceFrom returns the occurrences of a source on or after fromDate.
func (r *DailyTaskRepository) ListBySourceFrom(ctx context.Context, sourceType model.SourceType, sourceID, fromDate string) ([]model.DailyTask, error) {
	var tasks []model.DailyTask
	if err := r.db.WithContext(ctx).
		Where("source_type = ? AND source_id = ? AND target_date >= ?", sourceType, sourceID, fromDate).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list daily tasks of %s %s: %w", sourceType, sourceID, err)
	}
	return tasks, nil
}

// MaxOrder returns the highest order among tasks of date, or 0 for an empty day.
func (r *DailyTaskRepository) MaxOrder(ctx context.Context, date string) (int, error) {
	var maxOrder int
	if err := r.db.WithContext(ctx).Model(&model.DailyTask{}).
		Where("target_date = ?", date).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&maxOrder).Error; err != nil {
		return 0, fmt.Errorf("max daily order for %s: %w", date, err)
	}
	return maxOrder, nil
}

// Update writes the given columns. It returns gorm.ErrRecordNotFound when no
// task has the id.
func (r *DailyTaskRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.DailyTask{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update daily task %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *DailyTaskRepository) UpdateMany(ctx context.Context, ids []string, fields map[string]interface{}) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.DailyTask{}).Where("id IN ?", ids).Updates(fields)
	if res.Error != nil {
		return 0, fmt.Errorf("update daily tasks: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes a task if present.
func (r *DailyTaskRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.DailyTask{}).Error; err != nil {
		return fmt.Errorf("delete daily task %s: %w", id, err)
	}
	return nil
}
