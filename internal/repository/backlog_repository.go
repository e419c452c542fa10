package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"habit-planner/internal/model"
)

// BacklogFilter narrows backlog listings. Archived items are excluded unless
// IncludeArchived is set.
type BacklogFilter struct {
	Category        string
	Status          model.BacklogStatus
	SprintID        string
	IncludeArchived bool
	Limit           int
}

// BacklogRepository handles the backlog_items collection.
type BacklogRepository struct {
	db *gorm.DB
}

func NewBacklogRepository(db *gorm.DB) *BacklogRepository {
	return &BacklogRepository{db: db}
}

func (r *BacklogRepository) Create(ctx context.Context, item *model.BacklogItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create backlog item: %w", err)
	}
	return nil
}

func (r *BacklogRepository) FindByID(ctx context.Context, id string) (*model.BacklogItem, error) {
	var item model.BacklogItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *BacklogRepository) List(ctx context.Context, filter BacklogFilter) ([]model.BacklogItem, error) {
	q := r.db.WithContext(ctx).Model(&model.BacklogItem{})
	if !filter.IncludeArchived {
		q = q.Where("is_archived = ?", false)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SprintID != "" {
		q = q.Where("sprint_id = ?", filter.SprintID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var items []model.BacklogItem
	if err := q.Order("sort_order ASC, created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list backlog items: %w", err)
	}
	return items, nil
}

// ListScheduledUnassigned returns live items that have a scheduled date and no sprint.
func (r *BacklogRepository) ListScheduledUnassigned(ctx context.Context) ([]model.BacklogItem, error) {
	var items []model.BacklogItem
	if err := r.db.WithContext(ctx).
		Where("is_archived = ? AND sprint_id IS NULL AND scheduled_date IS NOT NULL", false).
		Order("sort_order ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list unassigned backlog items: %w", err)
	}
	return items, nil
}

func (r *BacklogRepository) MaxOrder(ctx context.Context) (int, error) {
	var maxOrder int
	if err := r.db.WithContext(ctx).Model(&model.BacklogItem{}).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&maxOrder).Error; err != nil {
		return 0, fmt.Errorf("max backlog order: %w", err)
	}
	return maxOrder, nil
}

// Update writes the given columns. It returns gorm.ErrRecordNotFound when no
// item has the id.
func (r *BacklogRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.BacklogItem{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update backlog item %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *BacklogRepository) UpdateMany(ctx context.Context, ids []string, fields map[string]interface{}) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.BacklogItem{}).Where("id IN ?", ids).Updates(fields)
	if res.Error != nil {
		return 0, fmt.Errorf("update backlog items: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ClearSprint detaches every item of sprintID.
func (r *BacklogRepository) ClearSprint(ctx context.Context, sprintID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.BacklogItem{}).
		Where("sprint_id = ?", sprintID).
		Update("sprint_id", nil)
	if res.Error != nil {
		return 0, fmt.Errorf("clear sprint %s: %w", sprintID, res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes an item. Derived daily tasks are left in place.
func (r *BacklogRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.BacklogItem{})
	if res.Error != nil {
		return fmt.Errorf("delete backlog item %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
