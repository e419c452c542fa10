package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-planner/internal/bizday"
	"habit-planner/internal/model"
	"habit-planner/internal/service"
)

func TestDigestSummary(t *testing.T) {
	f := newFixture(t, "2025-01-10", "21:30")
	resolver := bizday.NewResolver(f.clock.Now)
	digest := service.NewDigestService(f.store, resolver, f.daily, f.sprints)

	f.startSprint(t, "Focus <week>")
	f.addItem(t, "Buy milk & eggs", "2025-01-10")
	f.addItem(t, "Old chore", "2025-01-08")
	done := f.addItem(t, "Finished", "2025-01-10")
	_, err := f.daily.SetStatus(f.ctx, done.ID+"_2025-01-10", true)
	require.NoError(t, err)
	f.dailyRoutine(t, "Gym", "06:00", &model.GoalConfig{Period: bizday.PeriodWeekly, TargetCount: 3})
	_, err = f.routines.Expand(f.ctx, "2025-01-10")
	require.NoError(t, err)
	_, err = f.backlog.Add(f.ctx, service.BacklogInput{Title: "Tax form", Deadline: "2025-01-11"})
	require.NoError(t, err)

	text, err := digest.Summary(f.ctx)
	require.NoError(t, err)

	assert.Contains(t, text, "🗓 2025-01-10")
	assert.Contains(t, text, "Focus &lt;week&gt;")
	assert.Contains(t, text, "Buy milk &amp; eggs")
	assert.Contains(t, text, "⚠️ Old chore")
	assert.Contains(t, text, "⏰ from 2025-01-08")
	assert.Contains(t, text, "Gym <i>(0/3)</i>")
	assert.Contains(t, text, "⏳ Tax form")
	assert.Contains(t, text, "Done: 1/4")
	assert.NotContains(t, text, "Finished")
}

func TestDigestEmptyBoard(t *testing.T) {
	f := newFixture(t, "2025-01-10", "21:30")
	digest := service.NewDigestService(f.store, bizday.NewResolver(f.clock.Now), f.daily, f.sprints)

	text, err := digest.Summary(f.ctx)
	require.NoError(t, err)
	assert.Contains(t, text, "— nothing open")
	assert.Contains(t, text, "Done: 0/0")
}
