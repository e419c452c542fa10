package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"habit-planner/internal/bizday"
	"habit-planner/internal/model"
	"habit-planner/internal/repository"
)

// SprintInput represents data required to start a sprint.
type SprintInput struct {
	Name      string
	StartDate string
	EndDate   string
	Goal      string
	// TaskIDs are existing backlog items to attach.
	TaskIDs []string
	// NewTaskTitles become new backlog items inside the sprint.
	NewTaskTitles []string
}

// SprintPatch lists the sprint fields to change.
type SprintPatch struct {
	Name      *string
	StartDate *string
	EndDate   *string
	Goal      *string
	Retro     *string
}

// SprintService groups backlog items into time boxes.
type SprintService struct {
	store  *repository.Store
	clock  *bizday.Resolver
	logger *slog.Logger
}

func NewSprintService(store *repository.Store, clock *bizday.Resolver, logger *slog.Logger) *SprintService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SprintService{store: store, clock: clock, logger: logger}
}

// Create starts a sprint. It fails with ErrPreconditionFailed while another
// sprint is ACTIVE; the unique index on active sprints settles concurrent calls.
func (s *SprintService) Create(ctx context.Context, input SprintInput) (*model.Sprint, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if err := validateRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	active, err := s.store.Sprints.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, fmt.Errorf("%w: sprint %q is still active", ErrPreconditionFailed, active.Name)
	}

	sprint := &model.Sprint{
		ID:        uuid.NewString(),
		Name:      name,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Goal:      strings.TrimSpace(input.Goal),
		Status:    model.SprintActive,
	}
	err = s.store.Batch(ctx, func(tx *repository.Store) error {
		if err := tx.Sprints.Create(ctx, sprint); err != nil {
			return err
		}
		if _, err := tx.Backlog.UpdateMany(ctx, input.TaskIDs, map[string]interface{}{"sprint_id": sprint.ID}); err != nil {
			return err
		}

		maxOrder, err := tx.Backlog.MaxOrder(ctx)
		if err != nil {
			return err
		}
		for _, raw := range input.NewTaskTitles {
			title := strings.TrimSpace(raw)
			if title == "" {
				continue
			}
			maxOrder++
			sprintID := sprint.ID
			if err := tx.Backlog.Create(ctx, &model.BacklogItem{
				ID:       uuid.NewString(),
				Title:    title,
				Category: model.CategoryResearch,
				Priority: model.PriorityMedium,
				Status:   model.BacklogStock,
				Order:    maxOrder,
				SprintID: &sprintID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: another sprint is already active", ErrPreconditionFailed)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("sprint started", "sprint_id", sprint.ID, "name", sprint.Name)
	return sprint, nil
}

// GetActive returns the ACTIVE sprint, or nil when none is running.
func (s *SprintService) GetActive(ctx context.Context) (*model.Sprint, error) {
	return s.store.Sprints.FindActive(ctx)
}

func (s *SprintService) Get(ctx context.Context, id string) (*model.Sprint, error) {
	sprint, err := s.store.Sprints.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "sprint", id)
	}
	return sprint, nil
}

func (s *SprintService) List(ctx context.Context) ([]model.Sprint, error) {
	return s.store.Sprints.List(ctx)
}

func (s *SprintService) Update(ctx context.Context, id string, patch SprintPatch) (*model.Sprint, error) {
	sprint, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, invalid("name must not be empty")
		}
		fields["name"] = name
	}
	start, end := sprint.StartDate, sprint.EndDate
	if patch.StartDate != nil {
		start = *patch.StartDate
		fields["start_date"] = start
	}
	if patch.EndDate != nil {
		end = *patch.EndDate
		fields["end_date"] = end
	}
	if patch.StartDate != nil || patch.EndDate != nil {
		if err := validateRange(start, end); err != nil {
			return nil, err
		}
	}
	if patch.Goal != nil {
		fields["goal"] = strings.TrimSpace(*patch.Goal)
	}
	if patch.Retro != nil {
		fields["retro"] = strings.TrimSpace(*patch.Retro)
	}
	if len(fields) == 0 {
		return sprint, nil
	}

	if err := s.store.Sprints.Update(ctx, id, fields); err != nil {
		return nil, lookupErr(err, "sprint", id)
	}
	return s.Get(ctx, id)
}

// AddTasks attaches backlog items to the sprint and returns how many moved.
func (s *SprintService) AddTasks(ctx context.Context, sprintID string, taskIDs []string) (int64, error) {
	if _, err := s.Get(ctx, sprintID); err != nil {
		return 0, err
	}
	return s.store.Backlog.UpdateMany(ctx, taskIDs, map[string]interface{}{"sprint_id": sprintID})
}

// ListTasks returns the sprint's items, archived ones included.
func (s *SprintService) ListTasks(ctx context.Context, sprintID string) ([]model.BacklogItem, error) {
	if _, err := s.Get(ctx, sprintID); err != nil {
		return nil, err
	}
	return s.store.Backlog.List(ctx, repository.BacklogFilter{SprintID: sprintID, IncludeArchived: true})
}

// UnassignOnly detaches an item from its sprint and leaves its schedule alone.
func (s *SprintService) UnassignOnly(ctx context.Context, taskID string) (*model.BacklogItem, error) {
	if err := s.store.Backlog.Update(ctx, taskID, map[string]interface{}{"sprint_id": nil}); err != nil {
		return nil, lookupErr(err, "backlog item", taskID)
	}
	return s.getItem(ctx, taskID)
}

// UnassignAndReschedule detaches an item from its sprint and moves it to
// date, or back to the stock when date is nil. When the local scheduled day
// changes, the old occurrence is deleted and a new one created at the end of
// the new day.
func (s *SprintService) UnassignAndReschedule(ctx context.Context, taskID string, date *string) (*model.BacklogItem, error) {
	newDate := ""
	if date != nil {
		newDate = *date
		if err := requireDate(newDate); err != nil {
			return nil, err
		}
	}
	item, err := s.getItem(ctx, taskID)
	if err != nil {
		return nil, err
	}
	oldDate := bizday.FormatDatePtr(item.ScheduledDate)
	if oldDate == newDate {
		return s.UnassignOnly(ctx, taskID)
	}

	err = s.store.Batch(ctx, func(tx *repository.Store) error {
		fields := map[string]interface{}{
			"sprint_id":      nil,
			"scheduled_date": nil,
			"status":         model.BacklogStock,
		}
		if oldDate != "" {
			if err := tx.Daily.Delete(ctx, model.DailyTaskID(item.ID, oldDate)); err != nil {
				return err
			}
		}
		if newDate != "" {
			scheduled, err := bizday.ParseDate(newDate)
			if err != nil {
				return err
			}
			order, err := endOfDayOrder(ctx, tx, newDate)
			if err != nil {
				return err
			}
			occurrence := backlogOccurrence(item, newDate, order)
			occurrence.CreatedAt = s.clock.Now()
			if err := tx.Daily.Save(ctx, occurrence); err != nil {
				return err
			}
			fields["scheduled_date"] = scheduled
			fields["status"] = model.BacklogPending
		}
		return tx.Backlog.Update(ctx, item.ID, fields)
	})
	if err != nil {
		return nil, lookupErr(err, "backlog item", taskID)
	}
	return s.getItem(ctx, taskID)
}

// Complete closes an ACTIVE sprint with its retro. Member items stay as they are.
func (s *SprintService) Complete(ctx context.Context, id, retro string) (*model.Sprint, error) {
	sprint, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sprint.Status != model.SprintActive {
		return nil, fmt.Errorf("%w: sprint %s is %s", ErrPreconditionFailed, id, sprint.Status)
	}
	if err := s.store.Sprints.Update(ctx, id, map[string]interface{}{
		"status":       model.SprintCompleted,
		"retro":        strings.TrimSpace(retro),
		"completed_at": s.clock.Now(),
	}); err != nil {
		return nil, lookupErr(err, "sprint", id)
	}
	s.logger.Info("sprint completed", "sprint_id", id)
	return s.Get(ctx, id)
}

// Delete removes the sprint, first detaching its items when unassign is set.
func (s *SprintService) Delete(ctx context.Context, id string, unassign bool) error {
	err := s.store.Batch(ctx, func(tx *repository.Store) error {
		if unassign {
			if _, err := tx.Backlog.ClearSprint(ctx, id); err != nil {
				return err
			}
		}
		return tx.Sprints.Delete(ctx, id)
	})
	if err != nil {
		return lookupErr(err, "sprint", id)
	}
	return nil
}

// FindUnassignedInRange suggests items scheduled between start and end
// (inclusive, local days) that belong to no sprint.
func (s *SprintService) FindUnassignedInRange(ctx context.Context, start, end string) ([]model.BacklogItem, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	items, err := s.store.Backlog.ListScheduledUnassigned(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.BacklogItem, 0, len(items))
	for _, item := range items {
		day := bizday.FormatDatePtr(item.ScheduledDate)
		if day >= start && day <= end {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *SprintService) getItem(ctx context.Context, id string) (*model.BacklogItem, error) {
	item, err := s.store.Backlog.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "backlog item", id)
	}
	return item, nil
}

func validateRange(start, end string) error {
	if err := requireDate(start); err != nil {
		return err
	}
	if err := requireDate(end); err != nil {
		return err
	}
	if end < start {
		return invalid("end date %s is before start date %s", end, start)
	}
	return nil
}
