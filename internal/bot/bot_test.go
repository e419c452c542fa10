package bot

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-planner/internal/bizday"
	"habit-planner/internal/model"
	"habit-planner/internal/service"
)

func TestParseTaskArgs(t *testing.T) {
	cases := []struct {
		args     string
		id, date string
		wantErr  bool
	}{
		{args: "b1_2025-01-10", id: "b1_2025-01-10"},
		{args: "  b1_2025-01-10   2025-01-12 ", id: "b1_2025-01-10", date: "2025-01-12"},
		{args: "b1_2025-01-10 -", id: "b1_2025-01-10", date: "-"},
		{args: "b1_2025-01-10 tomorrow", wantErr: true},
		{args: "", wantErr: true},
		{args: "a b c", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.args, func(t *testing.T) {
			id, date, err := parseTaskArgs(tc.args)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.id, id)
			assert.Equal(t, tc.date, date)
		})
	}
}

func TestErrorText(t *testing.T) {
	assert.Contains(t, errorText(fmt.Errorf("daily task x: %w", service.ErrNotFound)), "Not found")
	assert.Contains(t, errorText(fmt.Errorf("%w: title <b>", service.ErrInvalidInput)), "title &lt;b&gt;")
	assert.Equal(t, "Something went wrong, try again later.", errorText(errors.New("disk full")))
}

func TestFormatBoard(t *testing.T) {
	view := &service.DailyView{
		Date: "2025-01-10",
		Tasks: []service.DailyTaskView{
			{DailyTask: model.DailyTask{ID: "b1_2025-01-08", Title: "old thing", Status: model.DailyTodo, TargetDate: "2025-01-08"}, IsOverdue: true},
			{DailyTask: model.DailyTask{ID: "r1_2025-01-10", Title: "gym", Status: model.DailyDone, SourceType: model.SourceRoutine, TargetDate: "2025-01-10"}, GoalProgress: "2/3"},
			{DailyTask: model.DailyTask{ID: "b2_2025-01-10", Title: "a & b", Status: model.DailyTodo, IsHighlighted: true, TargetDate: "2025-01-10"}},
		},
	}

	text, buttons := formatBoard(view)
	assert.Contains(t, text, "📋 <b>2025-01-10</b>")
	assert.Contains(t, text, "⚠️ Old thing · from 2025-01-08")
	assert.Contains(t, text, "✅ Gym ♻️ <i>(2/3)</i>")
	assert.Contains(t, text, "<b>A &amp; b</b>")

	require.Len(t, buttons, 2)
	require.NotNil(t, buttons[0][0].CallbackData)
	assert.Equal(t, "done:b1_2025-01-08", *buttons[0][0].CallbackData)
	assert.Equal(t, "done:b2_2025-01-10", *buttons[1][0].CallbackData)
}

func TestFormatBoardEmpty(t *testing.T) {
	text, buttons := formatBoard(&service.DailyView{Date: "2025-01-10"})
	assert.Contains(t, text, "Nothing planned")
	assert.Nil(t, buttons)
}

func TestFormatBacklogAndSprint(t *testing.T) {
	deadline := time.Date(2025, 1, 20, 0, 0, 0, 0, bizday.Location)
	scheduled := time.Date(2025, 1, 12, 0, 0, 0, 0, bizday.Location)
	items := []model.BacklogItem{
		{ID: "b1", Title: "read", Category: model.CategoryStudy, Priority: model.PriorityHigh, Deadline: &deadline},
		{ID: "b2", Title: "ship", Category: model.CategoryWork, Priority: model.PriorityLow, Status: model.BacklogDone, ScheduledDate: &scheduled},
	}

	text, buttons := formatBacklog(items)
	assert.Contains(t, text, "• Read <i>(Study, High)</i> ⏰ 2025-01-20")
	require.Len(t, buttons, 2)
	assert.Equal(t, "pick:b2", *buttons[1][0].CallbackData)

	empty, none := formatBacklog(nil)
	assert.Contains(t, empty, "empty")
	assert.Nil(t, none)

	sprint := &model.Sprint{Name: "Sprint 1", StartDate: "2025-01-06", EndDate: "2025-01-19", Goal: "focus"}
	summary := formatSprint(sprint, items)
	assert.Contains(t, summary, "🎯 focus")
	assert.Contains(t, summary, "✅ Ship · 2025-01-12")
	assert.Contains(t, summary, "Progress: 1/2")
}

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "Hello", shortTitle(" hello ", 10))
	assert.Equal(t, "Abcd…", shortTitle("abcdefgh", 5))
	assert.Equal(t, "Пр…", shortTitle("привет", 3))
	assert.Equal(t, "", normalizeTitle("  "))
}
