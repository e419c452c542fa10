package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-planner/internal/bizday"
	"habit-planner/internal/model"
	"habit-planner/internal/service"
)

func TestPickIsIdempotent(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	item := f.addItem(t, "Read paper", "")

	first, created, err := f.daily.Pick(f.ctx, item.ID, "2025-01-10")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, item.ID+"_2025-01-10", first.ID)
	assert.Equal(t, model.DailyTodo, first.Status)
	assert.Equal(t, 1, first.Order)

	second, created, err := f.daily.Pick(f.ctx, item.ID, "2025-01-10")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	tasks, err := f.store.Daily.ListByDate(f.ctx, "2025-01-10")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	got := f.item(t, item.ID)
	assert.Equal(t, model.BacklogPending, got.Status)
	assert.Equal(t, "2025-01-10", bizday.FormatDatePtr(got.ScheduledDate))
}

func TestPickMissingItem(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")

	_, _, err := f.daily.Pick(f.ctx, "missing", "2025-01-10")
	assert.ErrorIs(t, err, service.ErrNotFound)

	item := f.addItem(t, "Read paper", "")
	_, _, err = f.daily.Pick(f.ctx, item.ID, "10/01/2025")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestPostponeMovesToEndOfNewDay(t *testing.T) {
	f := newFixture(t, "2025-01-11", "10:00")
	a := f.addItem(t, "Already there", "2025-01-11")
	b := f.addItem(t, "Postponed first", "2025-01-10")
	c := f.addItem(t, "Postponed second", "2025-01-10")

	moved, err := f.daily.Postpone(f.ctx, b.ID+"_2025-01-10", ptr("2025-01-11"))
	require.NoError(t, err)
	assert.Equal(t, b.ID+"_2025-01-11", moved.ID)
	assert.Equal(t, model.DailyTodo, moved.Status)
	assert.Equal(t, service.PostponedOrder, moved.Order)
	assert.False(t, f.exists(t, b.ID+"_2025-01-10"))

	again, err := f.daily.Postpone(f.ctx, c.ID+"_2025-01-10", ptr("2025-01-11"))
	require.NoError(t, err)
	assert.Equal(t, service.PostponedOrder+1, again.Order)

	assert.Equal(t, "2025-01-11", bizday.FormatDatePtr(f.item(t, b.ID).ScheduledDate))

	view, err := f.daily.View(f.ctx, "2025-01-11")
	require.NoError(t, err)
	require.Len(t, view.Tasks, 3)
	assert.Equal(t, a.ID+"_2025-01-11", view.Tasks[0].ID)
	assert.Equal(t, c.ID+"_2025-01-11", view.Tasks[2].ID)
}

func TestPostponeSameDateIsNoop(t *testing.T) {
	f := newFixture(t, "2025-01-10", "10:00")
	item := f.addItem(t, "Stay", "2025-01-10")

	task, err := f.daily.Postpone(f.ctx, item.ID+"_2025-01-10", ptr("2025-01-10"))
	require.NoError(t, err)
	assert.Equal(t, 1, task.Order)
}

func TestPostponeBackToStock(t *testing.T) {
	f := newFixture(t, "2025-01-10", "10:00")
	item := f.addItem(t, "Later", "2025-01-10")

	next, err := f.daily.Postpone(f.ctx, item.ID+"_2025-01-10", nil)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.False(t, f.exists(t, item.ID+"_2025-01-10"))

	got := f.item(t, item.ID)
	assert.Equal(t, model.BacklogStock, got.Status)
	assert.Nil(t, got.ScheduledDate)
}

func TestViewBeforeCutoverShowsPreviousDay(t *testing.T) {
	f := newFixture(t, "2025-01-11", "02:00")
	f.addItem(t, "Yesterday", "2025-01-10")
	f.addItem(t, "Old open", "2025-01-08")
	done := f.addItem(t, "Old done", "2025-01-08")
	f.addItem(t, "Tomorrow board", "2025-01-11")
	late := f.dailyRoutine(t, "Late stretch", "23:00", nil)
	_, err := f.routines.Expand(f.ctx, "2025-01-10")
	require.NoError(t, err)
	_, err = f.daily.SetStatus(f.ctx, done.ID+"_2025-01-08", true)
	require.NoError(t, err)

	view, err := f.daily.View(f.ctx, "2025-01-11")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", view.Date)
	assert.Equal(t, "2025-01-11", view.Today)
	assert.False(t, view.IsToday)
	assert.ElementsMatch(t, []string{"Yesterday", "Old open", "Late stretch"}, titles(view))

	for _, task := range view.Tasks {
		assert.Equal(t, task.TargetDate == "2025-01-08", task.IsOverdue, task.Title)
		if task.SourceID == late.ID {
			assert.Equal(t, model.SourceRoutine, task.SourceType)
		}
	}
}

func TestViewGatesTodayRoutinesByTime(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	f.dailyRoutine(t, "Morning run", "08:00", nil)
	f.dailyRoutine(t, "Evening journal", "21:00", nil)
	_, err := f.routines.Expand(f.ctx, "2025-01-10")
	require.NoError(t, err)

	view, err := f.daily.View(f.ctx, "")
	require.NoError(t, err)
	assert.True(t, view.IsToday)
	assert.Equal(t, []string{"Morning run"}, titles(view))

	f.clock.Set(t, "2025-01-10", "21:00")
	view, err = f.daily.View(f.ctx, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Morning run", "Evening journal"}, titles(view))

	// Another date is not gated.
	_, err = f.routines.Expand(f.ctx, "2025-01-12")
	require.NoError(t, err)
	f.clock.Set(t, "2025-01-10", "09:00")
	view, err = f.daily.View(f.ctx, "2025-01-12")
	require.NoError(t, err)
	onDate := 0
	for _, task := range view.Tasks {
		if task.TargetDate == "2025-01-12" {
			onDate++
		} else {
			assert.True(t, task.IsOverdue)
		}
	}
	assert.Equal(t, 2, onDate)
	assert.Len(t, view.Tasks, 4)
}

func TestViewShowsGoalProgress(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	routine := f.dailyRoutine(t, "Gym", "05:00", &model.GoalConfig{Period: bizday.PeriodWeekly, TargetCount: 3})
	_, err := f.routines.Expand(f.ctx, "2025-01-10")
	require.NoError(t, err)

	_, err = f.daily.SetStatus(f.ctx, model.DailyTaskID(routine.ID, "2025-01-10"), true)
	require.NoError(t, err)

	view, err := f.daily.View(f.ctx, "")
	require.NoError(t, err)
	require.Len(t, view.Tasks, 1)
	assert.Equal(t, "1/3", view.Tasks[0].GoalProgress)
}

func TestViewPlaceholderTitle(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	require.NoError(t, f.store.Daily.Create(f.ctx, &model.DailyTask{
		ID:         "x_2025-01-10",
		SourceID:   "x",
		SourceType: model.SourceBacklog,
		TargetDate: "2025-01-10",
		Status:     model.DailyTodo,
		Title:      " ",
	}))

	view, err := f.daily.View(f.ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{service.UntitledTask}, titles(view))
}

func TestSetStatusSyncsBacklogItem(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	item := f.addItem(t, "Ship it", "2025-01-10")
	id := item.ID + "_2025-01-10"

	task, err := f.daily.SetStatus(f.ctx, id, true)
	require.NoError(t, err)
	assert.Equal(t, model.DailyDone, task.Status)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, model.BacklogDone, f.item(t, item.ID).Status)

	task, err = f.daily.SetStatus(f.ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, model.DailyTodo, task.Status)
	assert.Nil(t, task.CompletedAt)
	assert.Equal(t, model.BacklogStock, f.item(t, item.ID).Status)
}

func TestSetStatusCountsOnlyTransitions(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	routine := f.dailyRoutine(t, "Gym", "05:00", &model.GoalConfig{Period: bizday.PeriodWeekly, TargetCount: 3})
	_, err := f.routines.Expand(f.ctx, "2025-01-10")
	require.NoError(t, err)
	id := model.DailyTaskID(routine.ID, "2025-01-10")

	for i := 0; i < 2; i++ {
		_, err = f.daily.SetStatus(f.ctx, id, true)
		require.NoError(t, err)
	}
	got, err := f.routines.Get(f.ctx, routine.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stats.WeeklyCount)

	_, err = f.daily.Skip(f.ctx, id)
	require.NoError(t, err)
	got, err = f.routines.Get(f.ctx, routine.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stats.WeeklyCount)
	assert.Equal(t, model.DailySkipped, f.task(t, id).Status)
}

func TestSetStatusMissingTask(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	_, err := f.daily.SetStatus(f.ctx, "nope_2025-01-10", true)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDailyUpdateWritesBackToBacklog(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	item := f.addItem(t, "Draft", "2025-01-10")

	task, err := f.daily.Update(f.ctx, item.ID+"_2025-01-10", service.DailyPatch{
		Title:         ptr("Final draft"),
		IsHighlighted: ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Final draft", task.Title)

	got := f.item(t, item.ID)
	assert.Equal(t, "Final draft", got.Title)
	assert.True(t, got.IsHighlighted)
}

func TestDailyUpdateKeepsRoutineEditsLocal(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	routine := f.dailyRoutine(t, "Stretch", "05:00", nil)
	_, err := f.routines.Expand(f.ctx, "2025-01-10")
	require.NoError(t, err)

	_, err = f.daily.Update(f.ctx, model.DailyTaskID(routine.ID, "2025-01-10"), service.DailyPatch{Title: ptr("Long stretch")})
	require.NoError(t, err)

	got, err := f.routines.Get(f.ctx, routine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stretch", got.Title)
}

func TestQuickAddDefaultsToBusinessDate(t *testing.T) {
	f := newFixture(t, "2025-01-11", "02:00")

	task, err := f.daily.QuickAdd(f.ctx, service.QuickAddInput{Title: "Late idea", IsHighlighted: true})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", task.TargetDate)
	assert.True(t, task.IsHighlighted)

	item := f.item(t, task.SourceID)
	assert.Equal(t, model.BacklogPending, item.Status)
	assert.Equal(t, model.CategoryResearch, item.Category)
}

func TestDailyReorder(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	a := f.addItem(t, "A", "2025-01-10")
	b := f.addItem(t, "B", "2025-01-10")

	require.NoError(t, f.daily.Reorder(f.ctx, []string{b.ID + "_2025-01-10", a.ID + "_2025-01-10"}))

	view, err := f.daily.View(f.ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, titles(view))

	err = f.daily.Reorder(f.ctx, []string{"missing_2025-01-10"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}
