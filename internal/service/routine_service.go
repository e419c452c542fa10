package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"habit-planner/internal/bizday"
	"habit-planner/internal/model"
	"habit-planner/internal/repository"
)

// RoutineInput represents data required to create a routine.
type RoutineInput struct {
	Title         string
	RoutineType   model.RoutineType
	Frequency     model.Frequency
	ScheduledTime string
	Icon          string
	IsHighlighted bool
	GoalConfig    *model.GoalConfig
}

// RoutinePatch lists the routine fields to change. ClearGoal drops the goal
// and its counters.
type RoutinePatch struct {
	Title         *string
	RoutineType   *model.RoutineType
	Frequency     *model.Frequency
	ScheduledTime *string
	Icon          *string
	IsHighlighted *bool
	GoalConfig    *model.GoalConfig
	ClearGoal     bool
}

// RoutineService manages recurring templates and expands them into daily tasks.
type RoutineService struct {
	store  *repository.Store
	clock  *bizday.Resolver
	sync   *syncer
	logger *slog.Logger
}

func NewRoutineService(store *repository.Store, clock *bizday.Resolver, logger *slog.Logger) *RoutineService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoutineService{store: store, clock: clock, sync: newSyncer(store, clock, logger), logger: logger}
}

func (s *RoutineService) Create(ctx context.Context, input RoutineInput) (*model.Routine, error) {
	routine := &model.Routine{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(input.Title),
		RoutineType:   input.RoutineType,
		Frequency:     input.Frequency,
		ScheduledTime: input.ScheduledTime,
		Icon:          input.Icon,
		IsHighlighted: input.IsHighlighted,
		GoalConfig:    input.GoalConfig,
	}
	if routine.RoutineType == "" {
		routine.RoutineType = model.RoutineAction
	}
	if routine.ScheduledTime == "" {
		routine.ScheduledTime = model.DefaultScheduledTime
	}
	if routine.GoalConfig != nil {
		routine.Stats = &model.RoutineStats{}
	}
	if err := validateRoutine(routine); err != nil {
		return nil, err
	}

	if err := s.store.Routines.Create(ctx, routine); err != nil {
		return nil, err
	}
	return routine, nil
}

func (s *RoutineService) Get(ctx context.Context, id string) (*model.Routine, error) {
	routine, err := s.store.Routines.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "routine", id)
	}
	return routine, nil
}

func (s *RoutineService) List(ctx context.Context, routineType model.RoutineType) ([]model.Routine, error) {
	if routineType != "" && !routineType.Valid() {
		return nil, invalid("unknown routine type %q", routineType)
	}
	return s.store.Routines.List(ctx, routineType)
}

// Update applies patch. A rename or highlight change is copied into the
// routine's daily tasks from today on.
func (s *RoutineService) Update(ctx context.Context, id string, patch RoutinePatch) (*model.Routine, error) {
	routine, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	synced := make(map[string]interface{})
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title != routine.Title {
			synced["title"] = title
		}
		routine.Title = title
	}
	if patch.IsHighlighted != nil {
		if *patch.IsHighlighted != routine.IsHighlighted {
			synced["is_highlighted"] = *patch.IsHighlighted
		}
		routine.IsHighlighted = *patch.IsHighlighted
	}
	if patch.RoutineType != nil {
		routine.RoutineType = *patch.RoutineType
	}
	if patch.Frequency != nil {
		routine.Frequency = *patch.Frequency
	}
	if patch.ScheduledTime != nil {
		routine.ScheduledTime = *patch.ScheduledTime
	}
	if patch.Icon != nil {
		routine.Icon = *patch.Icon
	}
	switch {
	case patch.ClearGoal:
		routine.GoalConfig = nil
		routine.Stats = nil
	case patch.GoalConfig != nil:
		goal := *patch.GoalConfig
		routine.GoalConfig = &goal
		if routine.Stats == nil {
			routine.Stats = &model.RoutineStats{}
		}
	}
	if err := validateRoutine(routine); err != nil {
		return nil, err
	}

	if err := s.store.Routines.Save(ctx, routine); err != nil {
		return nil, err
	}
	s.sync.propagateToOccurrences(ctx, model.SourceRoutine, id, synced)
	return routine, nil
}

// Delete removes the routine. Its existing daily tasks stay on the board.
func (s *RoutineService) Delete(ctx context.Context, id string) error {
	if err := s.store.Routines.Delete(ctx, id); err != nil {
		return lookupErr(err, "routine", id)
	}
	return nil
}

// Expand materializes the ACTION routines firing on date as daily tasks and
// returns how many were created. Occurrences that already exist are left alone.
func (s *RoutineService) Expand(ctx context.Context, date string) (int, error) {
	if err := requireDate(date); err != nil {
		return 0, err
	}
	day, err := bizday.ParseDate(date)
	if err != nil {
		return 0, err
	}
	routines, err := s.store.Routines.List(ctx, model.RoutineAction)
	if err != nil {
		return 0, err
	}

	created := 0
	err = s.store.Batch(ctx, func(tx *repository.Store) error {
		maxOrder, err := tx.Daily.MaxOrder(ctx, date)
		if err != nil {
			return err
		}
		for _, routine := range routines {
			if !routine.Frequency.Matches(day) {
				continue
			}
			id := model.DailyTaskID(routine.ID, date)
			exists, err := tx.Daily.Exists(ctx, id)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			maxOrder++
			if err := tx.Daily.Create(ctx, &model.DailyTask{
				ID:            id,
				SourceID:      routine.ID,
				SourceType:    model.SourceRoutine,
				TargetDate:    date,
				Status:        model.DailyTodo,
				Title:         routine.Title,
				Order:         maxOrder,
				IsHighlighted: routine.IsHighlighted,
			}); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("expand routines for %s: %w", date, err)
	}
	s.logger.Info("expanded routines", "date", date, "created", created)
	return created, nil
}

// ExpandBusinessDate expands routines for the current business date.
func (s *RoutineService) ExpandBusinessDate(ctx context.Context) (int, error) {
	return s.Expand(ctx, s.clock.BusinessDate())
}

func validateRoutine(r *model.Routine) error {
	if r.Title == "" {
		return invalid("title is required")
	}
	if !r.RoutineType.Valid() {
		return invalid("unknown routine type %q", r.RoutineType)
	}
	if err := r.Frequency.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !bizday.ValidClock(r.ScheduledTime) {
		return invalid("scheduled time %q must be HH:MM", r.ScheduledTime)
	}
	if r.GoalConfig != nil {
		if !r.GoalConfig.Period.Valid() {
			return invalid("unknown goal period %q", r.GoalConfig.Period)
		}
		if r.GoalConfig.TargetCount <= 0 {
			return invalid("goal target must be positive")
		}
	}
	return nil
}
