package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"gorm.io/gorm"

	"habit-planner/internal/bizday"
	"habit-planner/internal/model"
	"habit-planner/internal/repository"
)

const (
	// PostponedOrder is the minimum order of a postponed task, which puts it
	// at the end of its new day.
	PostponedOrder = 9999
	// UntitledTask replaces an empty title on read.
	UntitledTask = "(untitled)"
)

// DailyTaskView is a daily task as shown on the board.
type DailyTaskView struct {
	model.DailyTask
	// IsOverdue marks a TODO task carried forward from an earlier date.
	IsOverdue bool
	// GoalProgress is "{count}/{target}" for routines with a goal.
	GoalProgress string
}

// DailyView is the board for one date.
type DailyView struct {
	Date         string
	Today        string
	BusinessDate string
	IsToday      bool
	Tasks        []DailyTaskView
}

type QuickAddInput struct {
	Title         string
	Date          string
	Category      string
	IsHighlighted bool
}

// DailyPatch lists the daily task fields to change.
type DailyPatch struct {
	Title         *string
	IsHighlighted *bool
}

// DailyService builds the daily board and moves tasks between days.
type DailyService struct {
	store   *repository.Store
	clock   *bizday.Resolver
	backlog *BacklogService
	sync    *syncer
}

func NewDailyService(store *repository.Store, clock *bizday.Resolver, backlog *BacklogService, logger *slog.Logger) *DailyService {
	return &DailyService{
		store:   store,
		clock:   clock,
		backlog: backlog,
		sync:    newSyncer(store, clock, logger),
	}
}

// View returns the board of date. Asking for the local calendar today (or
// passing "") yields the business date board instead, so the previous day
// stays visible until the cutover. Other dates are taken literally.
func (s *DailyService) View(ctx context.Context, date string) (*DailyView, error) {
	now := s.clock.Now()
	today := bizday.TodayAt(now)
	query := date
	if query == "" || query == today {
		query = bizday.BusinessDateAt(now)
	} else if err := requireDate(query); err != nil {
		return nil, err
	}
	isToday := query == today

	var dated, overdue []model.DailyTask
	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		dated, err = s.store.Daily.ListByDate(ctx, query)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		overdue, err = s.store.Daily.ListOpenBefore(ctx, query)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]model.DailyTask, len(dated)+len(overdue))
	for _, t := range overdue {
		merged[t.ID] = t
	}
	for _, t := range dated {
		merged[t.ID] = t
	}

	var routineIDs []string
	seen := make(map[string]bool)
	for _, t := range merged {
		if t.SourceType == model.SourceRoutine && !seen[t.SourceID] {
			seen[t.SourceID] = true
			routineIDs = append(routineIDs, t.SourceID)
		}
	}
	routines, err := s.store.Routines.FindByIDs(ctx, routineIDs)
	if err != nil {
		return nil, err
	}

	clock := now.Format(bizday.ClockLayout)
	tasks := make([]DailyTaskView, 0, len(merged))
	for _, t := range merged {
		view := DailyTaskView{DailyTask: t, IsOverdue: t.TargetDate < query}
		if t.SourceType == model.SourceRoutine {
			if routine, ok := routines[t.SourceID]; ok {
				// Today's routine occurrences appear once their time has come.
				if isToday && t.TargetDate == query && scheduledTime(routine) > clock {
					continue
				}
				view.GoalProgress = goalProgress(routine, now)
			}
		}
		if strings.TrimSpace(view.Title) == "" {
			view.Title = UntitledTask
		}
		tasks = append(tasks, view)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Order != tasks[j].Order {
			return tasks[i].Order < tasks[j].Order
		}
		if tasks[i].TargetDate != tasks[j].TargetDate {
			return tasks[i].TargetDate < tasks[j].TargetDate
		}
		return tasks[i].ID < tasks[j].ID
	})

	return &DailyView{
		Date:         query,
		Today:        today,
		BusinessDate: bizday.BusinessDateAt(now),
		IsToday:      isToday,
		Tasks:        tasks,
	}, nil
}

func (s *DailyService) Get(ctx context.Context, id string) (*model.DailyTask, error) {
	task, err := s.store.Daily.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "daily task", id)
	}
	return task, nil
}

// Pick schedules a backlog item for date. Picking the same item for the same
// date twice returns the existing task with created=false.
func (s *DailyService) Pick(ctx context.Context, backlogID, date string) (task *model.DailyTask, created bool, err error) {
	if err := requireDate(date); err != nil {
		return nil, false, err
	}
	item, err := s.backlog.Get(ctx, backlogID)
	if err != nil {
		return nil, false, err
	}
	scheduled, err := bizday.ParseDate(date)
	if err != nil {
		return nil, false, err
	}

	id := model.DailyTaskID(item.ID, date)
	err = s.store.Batch(ctx, func(tx *repository.Store) error {
		existing, err := tx.Daily.FindByID(ctx, id)
		if err == nil {
			task = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find daily task %s: %w", id, err)
		}

		maxOrder, err := tx.Daily.MaxOrder(ctx, date)
		if err != nil {
			return err
		}
		task = backlogOccurrence(item, date, maxOrder+1)
		if err := tx.Daily.Create(ctx, task); err != nil {
			return err
		}
		created = true
		return tx.Backlog.Update(ctx, item.ID, map[string]interface{}{
			"scheduled_date": scheduled,
			"status":         model.BacklogPending,
		})
	})
	if err != nil {
		return nil, false, err
	}
	return task, created, nil
}

// Postpone moves a task to newDate, or back to the backlog when newDate is
// nil. The task id embeds its date, so the old document is deleted and a new
// TODO one is created at the end of the new day.
func (s *DailyService) Postpone(ctx context.Context, id string, newDate *string) (*model.DailyTask, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if newDate != nil {
		if err := requireDate(*newDate); err != nil {
			return nil, err
		}
		if *newDate == task.TargetDate {
			return task, nil
		}
	}

	var next *model.DailyTask
	err = s.store.Batch(ctx, func(tx *repository.Store) error {
		if err := tx.Daily.Delete(ctx, task.ID); err != nil {
			return err
		}
		if newDate == nil {
			if task.SourceType != model.SourceBacklog {
				return nil
			}
			return ignoreMissing(tx.Backlog.Update(ctx, task.SourceID, map[string]interface{}{
				"scheduled_date": nil,
				"status":         model.BacklogStock,
			}))
		}

		order, err := endOfDayOrder(ctx, tx, *newDate)
		if err != nil {
			return err
		}
		next = &model.DailyTask{
			ID:            model.DailyTaskID(task.SourceID, *newDate),
			SourceID:      task.SourceID,
			SourceType:    task.SourceType,
			TargetDate:    *newDate,
			Status:        model.DailyTodo,
			Title:         task.Title,
			Order:         order,
			IsHighlighted: task.IsHighlighted,
			CreatedAt:     s.clock.Now(),
		}
		if err := tx.Daily.Save(ctx, next); err != nil {
			return err
		}
		if task.SourceType != model.SourceBacklog {
			return nil
		}
		scheduled, err := bizday.ParseDate(*newDate)
		if err != nil {
			return err
		}
		return ignoreMissing(tx.Backlog.Update(ctx, task.SourceID, map[string]interface{}{
			"scheduled_date": scheduled,
			"status":         model.BacklogPending,
		}))
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// SetStatus completes or reopens a task and then, best effort, updates the
// routine goal counters or the backlog item status of its source. Secondary
// updates only run when the task actually enters or leaves DONE.
func (s *DailyService) SetStatus(ctx context.Context, id string, completed bool) (*model.DailyTask, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	wasDone := task.Status == model.DailyDone
	now := s.clock.Now()

	fields := map[string]interface{}{"status": model.DailyTodo, "completed_at": nil}
	if completed {
		fields = map[string]interface{}{"status": model.DailyDone, "completed_at": now}
	}
	if err := s.store.Daily.Update(ctx, id, fields); err != nil {
		return nil, lookupErr(err, "daily task", id)
	}

	if completed != wasDone {
		s.syncCompletion(ctx, task, completed)
	}
	return s.Get(ctx, id)
}

// Skip marks a task SKIPPED. A skipped task no longer carries forward.
func (s *DailyService) Skip(ctx context.Context, id string) (*model.DailyTask, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Daily.Update(ctx, id, map[string]interface{}{
		"status":       model.DailySkipped,
		"completed_at": nil,
	}); err != nil {
		return nil, lookupErr(err, "daily task", id)
	}
	if task.Status == model.DailyDone {
		s.syncCompletion(ctx, task, false)
	}
	return s.Get(ctx, id)
}

func (s *DailyService) syncCompletion(ctx context.Context, task *model.DailyTask, completed bool) {
	switch task.SourceType {
	case model.SourceRoutine:
		s.sync.syncRoutineStats(ctx, task.SourceID, completed, s.clock.Now())
	case model.SourceBacklog:
		s.sync.syncBacklogStatus(ctx, task.SourceID, completed)
	}
}

// Update edits a task's title or highlight. Backlog-sourced edits are written
// back to the backlog item; routine-sourced tasks keep the edit local.
func (s *DailyService) Update(ctx context.Context, id string, patch DailyPatch) (*model.DailyTask, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, invalid("title must not be empty")
		}
		fields["title"] = title
	}
	if patch.IsHighlighted != nil {
		fields["is_highlighted"] = *patch.IsHighlighted
	}
	if len(fields) == 0 {
		return task, nil
	}

	if err := s.store.Daily.Update(ctx, id, fields); err != nil {
		return nil, lookupErr(err, "daily task", id)
	}
	if task.SourceType == model.SourceBacklog {
		s.sync.writeBackToBacklog(ctx, task.SourceID, fields)
	}
	return s.Get(ctx, id)
}

// QuickAdd creates a backlog item already picked for date.
func (s *DailyService) QuickAdd(ctx context.Context, input QuickAddInput) (*model.DailyTask, error) {
	date := input.Date
	if date == "" {
		date = s.clock.BusinessDate()
	}
	if err := requireDate(date); err != nil {
		return nil, err
	}
	item, err := s.backlog.Add(ctx, BacklogInput{
		Title:         input.Title,
		Category:      input.Category,
		ScheduledDate: date,
		IsHighlighted: input.IsHighlighted,
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, model.DailyTaskID(item.ID, date))
}

// Reorder sets each task's order to its position in ids.
func (s *DailyService) Reorder(ctx context.Context, ids []string) error {
	return s.store.Batch(ctx, func(tx *repository.Store) error {
		for i, id := range ids {
			if err := tx.Daily.Update(ctx, id, map[string]interface{}{"sort_order": i + 1}); err != nil {
				return lookupErr(err, "daily task", id)
			}
		}
		return nil
	})
}

func backlogOccurrence(item *model.BacklogItem, date string, order int) *model.DailyTask {
	return &model.DailyTask{
		ID:            model.DailyTaskID(item.ID, date),
		SourceID:      item.ID,
		SourceType:    model.SourceBacklog,
		TargetDate:    date,
		Status:        model.DailyTodo,
		Title:         item.Title,
		Order:         order,
		IsHighlighted: item.IsHighlighted,
	}
}

// endOfDayOrder returns an order placing a task after everything on date.
func endOfDayOrder(ctx context.Context, tx *repository.Store, date string) (int, error) {
	maxOrder, err := tx.Daily.MaxOrder(ctx, date)
	if err != nil {
		return 0, err
	}
	if maxOrder >= PostponedOrder {
		return maxOrder + 1, nil
	}
	return PostponedOrder, nil
}

func scheduledTime(r model.Routine) string {
	if r.ScheduledTime == "" {
		return model.DefaultScheduledTime
	}
	return r.ScheduledTime
}

func goalProgress(r model.Routine, now time.Time) string {
	if r.GoalConfig == nil || r.Stats == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d", r.Stats.Count(r.GoalConfig.Period, now), r.GoalConfig.TargetCount)
}

func ignoreMissing(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
