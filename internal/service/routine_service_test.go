package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-planner/internal/bizday"
	"habit-planner/internal/model"
	"habit-planner/internal/service"
)

func TestCreateRoutineDefaults(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")

	routine, err := f.routines.Create(f.ctx, service.RoutineInput{
		Title:      " Water plants ",
		Frequency:  model.Frequency{Type: model.FrequencyWeekly, Weekdays: []int{0, 3}},
		GoalConfig: &model.GoalConfig{Period: bizday.PeriodMonthly, TargetCount: 8},
	})
	require.NoError(t, err)
	assert.Equal(t, "Water plants", routine.Title)
	assert.Equal(t, model.RoutineAction, routine.RoutineType)
	assert.Equal(t, model.DefaultScheduledTime, routine.ScheduledTime)
	require.NotNil(t, routine.Stats)
	assert.Zero(t, routine.Stats.MonthlyCount)
}

func TestCreateRoutineValidation(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	daily := model.Frequency{Type: model.FrequencyDaily}

	cases := map[string]service.RoutineInput{
		"empty title":  {Frequency: daily},
		"bad type":     {Title: "x", RoutineType: "HABIT", Frequency: daily},
		"no weekdays":  {Title: "x", Frequency: model.Frequency{Type: model.FrequencyWeekly}},
		"weekday 7":    {Title: "x", Frequency: model.Frequency{Type: model.FrequencyWeekly, Weekdays: []int{7}}},
		"month day 0":  {Title: "x", Frequency: model.Frequency{Type: model.FrequencyMonthly, MonthDays: []int{0}}},
		"bad clock":    {Title: "x", Frequency: daily, ScheduledTime: "7am"},
		"zero target":  {Title: "x", Frequency: daily, GoalConfig: &model.GoalConfig{Period: bizday.PeriodWeekly}},
		"bad period":   {Title: "x", Frequency: daily, GoalConfig: &model.GoalConfig{Period: "DAILY", TargetCount: 1}},
		"no frequency": {Title: "x"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.routines.Create(f.ctx, input)
			assert.ErrorIs(t, err, service.ErrInvalidInput)
		})
	}
}

func TestExpandCreatesOccurrencesOnce(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	daily := f.dailyRoutine(t, "Meditate", "06:00", nil)
	_, err := f.routines.Create(f.ctx, service.RoutineInput{
		Title:       "Be kind",
		RoutineType: model.RoutineMindset,
		Frequency:   model.Frequency{Type: model.FrequencyDaily},
	})
	require.NoError(t, err)
	_, err = f.routines.Create(f.ctx, service.RoutineInput{
		Title:     "Sunday review",
		Frequency: model.Frequency{Type: model.FrequencyWeekly, Weekdays: []int{0}},
	})
	require.NoError(t, err)
	f.addItem(t, "Picked earlier", "2025-01-10")

	n, err := f.routines.Expand(f.ctx, "2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	task := f.task(t, model.DailyTaskID(daily.ID, "2025-01-10"))
	assert.Equal(t, model.SourceRoutine, task.SourceType)
	assert.Equal(t, "Meditate", task.Title)
	assert.Equal(t, 2, task.Order)

	n, err = f.routines.Expand(f.ctx, "2025-01-10")
	require.NoError(t, err)
	assert.Zero(t, n)

	// 2025-01-12 is a Sunday.
	n, err = f.routines.Expand(f.ctx, "2025-01-12")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestExpandKeepsCompletedOccurrence(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	routine := f.dailyRoutine(t, "Meditate", "06:00", nil)
	_, err := f.routines.Expand(f.ctx, "2025-01-10")
	require.NoError(t, err)
	id := model.DailyTaskID(routine.ID, "2025-01-10")
	_, err = f.daily.SetStatus(f.ctx, id, true)
	require.NoError(t, err)

	_, err = f.routines.Expand(f.ctx, "2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, model.DailyDone, f.task(t, id).Status)
}

func TestExpandBusinessDate(t *testing.T) {
	f := newFixture(t, "2025-01-11", "04:59")
	routine := f.dailyRoutine(t, "Meditate", "06:00", nil)

	n, err := f.routines.ExpandBusinessDate(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, f.exists(t, model.DailyTaskID(routine.ID, "2025-01-10")))
}

func TestWeeklyGoalResetsOnNewWeek(t *testing.T) {
	// 2025-01-06 is a Monday.
	f := newFixture(t, "2025-01-06", "09:00")
	routine := f.dailyRoutine(t, "Gym", "05:00", &model.GoalConfig{Period: bizday.PeriodWeekly, TargetCount: 3})

	for _, date := range []string{"2025-01-06", "2025-01-07", "2025-01-08"} {
		f.clock.Set(t, date, "09:00")
		_, err := f.routines.Expand(f.ctx, date)
		require.NoError(t, err)
		_, err = f.daily.SetStatus(f.ctx, model.DailyTaskID(routine.ID, date), true)
		require.NoError(t, err)
	}
	got, err := f.routines.Get(f.ctx, routine.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stats.WeeklyCount)

	f.clock.Set(t, "2025-01-13", "09:00")
	_, err = f.routines.Expand(f.ctx, "2025-01-13")
	require.NoError(t, err)
	_, err = f.daily.SetStatus(f.ctx, model.DailyTaskID(routine.ID, "2025-01-13"), true)
	require.NoError(t, err)

	got, err = f.routines.Get(f.ctx, routine.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stats.WeeklyCount)
}

func TestRoutineRenamePropagatesFromToday(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	routine := f.dailyRoutine(t, "Read", "06:00", nil)
	for _, date := range []string{"2025-01-09", "2025-01-10", "2025-01-11"} {
		_, err := f.routines.Expand(f.ctx, date)
		require.NoError(t, err)
	}

	updated, err := f.routines.Update(f.ctx, routine.ID, service.RoutinePatch{
		Title:         ptr("Read 20 pages"),
		IsHighlighted: ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Read 20 pages", updated.Title)

	past := f.task(t, model.DailyTaskID(routine.ID, "2025-01-09"))
	assert.Equal(t, "Read", past.Title)
	assert.False(t, past.IsHighlighted)
	for _, date := range []string{"2025-01-10", "2025-01-11"} {
		task := f.task(t, model.DailyTaskID(routine.ID, date))
		assert.Equal(t, "Read 20 pages", task.Title, date)
		assert.True(t, task.IsHighlighted, date)
	}
}

func TestRoutineUpdateGoal(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	routine := f.dailyRoutine(t, "Read", "06:00", nil)

	updated, err := f.routines.Update(f.ctx, routine.ID, service.RoutinePatch{
		GoalConfig: &model.GoalConfig{Period: bizday.PeriodWeekly, TargetCount: 2},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Stats)

	updated, err = f.routines.Update(f.ctx, routine.ID, service.RoutinePatch{ClearGoal: true})
	require.NoError(t, err)
	assert.Nil(t, updated.GoalConfig)
	assert.Nil(t, updated.Stats)

	_, err = f.routines.Update(f.ctx, routine.ID, service.RoutinePatch{ScheduledTime: ptr("25:00")})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestRoutineDeleteLeavesOccurrences(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	routine := f.dailyRoutine(t, "Read", "06:00", nil)
	_, err := f.routines.Expand(f.ctx, "2025-01-10")
	require.NoError(t, err)

	require.NoError(t, f.routines.Delete(f.ctx, routine.ID))
	assert.True(t, f.exists(t, model.DailyTaskID(routine.ID, "2025-01-10")))

	_, err = f.routines.Get(f.ctx, routine.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, f.routines.Delete(f.ctx, routine.ID), service.ErrNotFound)

	view, err := f.daily.View(f.ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Read"}, titles(view))
}

func TestListRoutinesByType(t *testing.T) {
	f := newFixture(t, "2025-01-10", "09:00")
	f.dailyRoutine(t, "Read", "06:00", nil)
	_, err := f.routines.Create(f.ctx, service.RoutineInput{
		Title:       "Breathe",
		RoutineType: model.RoutineMindset,
		Frequency:   model.Frequency{Type: model.FrequencyDaily},
	})
	require.NoError(t, err)

	all, err := f.routines.List(f.ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mindset, err := f.routines.List(f.ctx, model.RoutineMindset)
	require.NoError(t, err)
	require.Len(t, mindset, 1)
	assert.Equal(t, "Breathe", mindset[0].Title)

	_, err = f.routines.List(f.ctx, "OTHER")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
