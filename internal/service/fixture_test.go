package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"habit-planner/internal/bizday"
	"habit-planner/internal/model"
	"habit-planner/internal/repository"
	"habit-planner/internal/service"
	"habit-planner/internal/testutil"
)

type fixture struct {
	ctx      context.Context
	store    *repository.Store
	clock    *testutil.Clock
	backlog  *service.BacklogService
	daily    *service.DailyService
	routines *service.RoutineService
	sprints  *service.SprintService
}

func newFixture(t *testing.T, date, clock string) *fixture {
	t.Helper()
	store := testutil.NewTestStore(t)
	c := testutil.NewClock(t, date, clock)
	resolver := bizday.NewResolver(c.Now)
	backlog := service.NewBacklogService(store, resolver, nil)
	return &fixture{
		ctx:      context.Background(),
		store:    store,
		clock:    c,
		backlog:  backlog,
		daily:    service.NewDailyService(store, resolver, backlog, nil),
		routines: service.NewRoutineService(store, resolver, nil),
		sprints:  service.NewSprintService(store, resolver, nil),
	}
}

func (f *fixture) addItem(t *testing.T, title, scheduled string) *model.BacklogItem {
	t.Helper()
	item, err := f.backlog.Add(f.ctx, service.BacklogInput{Title: title, ScheduledDate: scheduled})
	require.NoError(t, err)
	return item
}

func (f *fixture) dailyRoutine(t *testing.T, title, at string, goal *model.GoalConfig) *model.Routine {
	t.Helper()
	routine, err := f.routines.Create(f.ctx, service.RoutineInput{
		Title:         title,
		Frequency:     model.Frequency{Type: model.FrequencyDaily},
		ScheduledTime: at,
		GoalConfig:    goal,
	})
	require.NoError(t, err)
	return routine
}

func (f *fixture) task(t *testing.T, id string) *model.DailyTask {
	t.Helper()
	task, err := f.store.Daily.FindByID(f.ctx, id)
	require.NoError(t, err)
	return task
}

func (f *fixture) exists(t *testing.T, id string) bool {
	t.Helper()
	ok, err := f.store.Daily.Exists(f.ctx, id)
	require.NoError(t, err)
	return ok
}

func (f *fixture) item(t *testing.T, id string) *model.BacklogItem {
	t.Helper()
	item, err := f.backlog.Get(f.ctx, id)
	require.NoError(t, err)
	return item
}

func ptr[T any](v T) *T {
	return &v
}

func titles(view *service.DailyView) []string {
	out := make([]string, 0, len(view.Tasks))
	for _, task := range view.Tasks {
		out = append(out, task.Title)
	}
	return out
}
