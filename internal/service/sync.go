package service

import (
	"context"
	"log/slog"
	"time"

	"habit-planner/internal/bizday"
	"habit-planner/internal/model"
	"habit-planner/internal/repository"
)

// syncer copies denormalized fields between sources and their daily tasks.
// Every method is best effort: failures are logged and never returned, so the
// caller's primary write stands even when the copies lag behind.
type syncer struct {
	store  *repository.Store
	clock  *bizday.Resolver
	logger *slog.Logger
}

func newSyncer(store *repository.Store, clock *bizday.Resolver, logger *slog.Logger) *syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &syncer{store: store, clock: clock, logger: logger}
}

// propagateToOccurrences pushes fields into the occurrences of a source dated
// today (local calendar) or later. Past occurrences keep their old values.
func (s *syncer) propagateToOccurrences(ctx context.Context, sourceType model.SourceType, sourceID string, fields map[string]interface{}) {
	if len(fields) == 0 {
		return
	}
	tasks, err := s.store.Daily.ListBySourceFrom(ctx, sourceType, sourceID, s.clock.Today())
	if err != nil {
		s.logger.Warn("sync occurrences failed", "source_type", sourceType, "source_id", sourceID, "err", err)
		return
	}
	if len(tasks) == 0 {
		return
	}
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	n, err := s.store.Daily.UpdateMany(ctx, ids, fields)
	if err != nil {
		s.logger.Warn("sync occurrences failed", "source_type", sourceType, "source_id", sourceID, "err", err)
		return
	}
	s.logger.Debug("synced occurrences", "source_type", sourceType, "source_id", sourceID, "count", n)
}

// writeBackToBacklog mirrors a daily task edit onto its backlog item.
func (s *syncer) writeBackToBacklog(ctx context.Context, backlogID string, fields map[string]interface{}) {
	if len(fields) == 0 {
		return
	}
	if err := s.store.Backlog.Update(ctx, backlogID, fields); err != nil {
		s.logger.Warn("sync backlog item failed", "backlog_id", backlogID, "err", err)
	}
}

// syncBacklogStatus marks the backlog item DONE on completion and returns it
// to STOCK on un-completion.
func (s *syncer) syncBacklogStatus(ctx context.Context, backlogID string, completed bool) {
	status := model.BacklogStock
	if completed {
		status = model.BacklogDone
	}
	if err := s.store.Backlog.Update(ctx, backlogID, map[string]interface{}{"status": status}); err != nil {
		s.logger.Warn("sync backlog status failed", "backlog_id", backlogID, "err", err)
	}
}

// syncRoutineStats moves the goal counter of a routine by one completion.
func (s *syncer) syncRoutineStats(ctx context.Context, routineID string, completed bool, now time.Time) {
	routine, err := s.store.Routines.FindByID(ctx, routineID)
	if err != nil {
		s.logger.Warn("sync routine stats failed", "routine_id", routineID, "err", err)
		return
	}
	if !routine.ApplyCompletion(completed, now) {
		return
	}
	if err := s.store.Routines.UpdateStats(ctx, routine); err != nil {
		s.logger.Warn("sync routine stats failed", "routine_id", routineID, "err", err)
	}
}
