package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"habit-planner/internal/bizday"
	"habit-planner/internal/model"
	"habit-planner/internal/repository"
)

// deadlineSoon is how close a backlog deadline must be to show up in the digest.
const deadlineSoon = 48 * time.Hour

// DigestService builds human-readable summaries for daily notifications.
type DigestService struct {
	daily   *DailyService
	sprints *SprintService
	store   *repository.Store
	clock   *bizday.Resolver
}

func NewDigestService(store *repository.Store, clock *bizday.Resolver, daily *DailyService, sprints *SprintService) *DigestService {
	return &DigestService{daily: daily, sprints: sprints, store: store, clock: clock}
}

// Summary renders the business-date board as Telegram HTML.
func (s *DigestService) Summary(ctx context.Context) (string, error) {
	var (
		board   *DailyView
		sprint  *model.Sprint
		backlog []model.BacklogItem
	)
	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		board, err = s.daily.View(ctx, "")
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		sprint, err = s.sprints.GetActive(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		backlog, err = s.store.Backlog.List(ctx, repository.BacklogFilter{Status: model.BacklogStock})
		return err
	})
	if err := p.Wait(); err != nil {
		return "", err
	}

	now := s.clock.Now()
	var open, routines []DailyTaskView
	done := 0
	for _, task := range board.Tasks {
		switch {
		case task.Status == model.DailyDone:
			done++
		case task.Status != model.DailyTodo:
		case task.SourceType == model.SourceRoutine:
			routines = append(routines, task)
		default:
			open = append(open, task)
		}
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily digest</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n", board.Date))
	if sprint != nil {
		builder.WriteString(fmt.Sprintf("🏃 Sprint <b>%s</b> until %s\n", html.EscapeString(sprint.Name), sprint.EndDate))
	}

	builder.WriteString("\n🔥 <b>Open tasks</b>\n")
	if len(open) == 0 {
		builder.WriteString("— nothing open\n")
	}
	for _, task := range open {
		builder.WriteString(formatDailyTask(task))
	}

	builder.WriteString("\n♻️ <b>Routines</b>\n")
	if len(routines) == 0 {
		builder.WriteString("— nothing left\n")
	}
	for _, task := range routines {
		builder.WriteString(formatDailyTask(task))
	}

	var soon []model.BacklogItem
	for _, item := range backlog {
		if item.Deadline != nil && item.Deadline.Sub(now) <= deadlineSoon {
			soon = append(soon, item)
		}
	}
	if len(soon) > 0 {
		builder.WriteString("\n⏳ <b>Deadlines</b>\n")
		for _, item := range soon {
			builder.WriteString(formatDeadline(item, now))
		}
	}

	builder.WriteString(fmt.Sprintf("\n✅ Done: %d/%d\n", done, len(board.Tasks)))
	return strings.TrimSpace(builder.String()), nil
}

func formatDailyTask(task DailyTaskView) string {
	var sb strings.Builder

	icon := "🟢"
	switch {
	case task.IsOverdue:
		icon = "⚠️"
	case task.IsHighlighted:
		icon = "⭐"
	}
	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(strings.TrimSpace(task.Title))))
	if task.GoalProgress != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", task.GoalProgress))
	}
	if task.IsOverdue {
		sb.WriteString(fmt.Sprintf("\n   ⏰ from %s", task.TargetDate))
	}
	sb.WriteString(fmt.Sprintf("\n   <code>%s</code>", html.EscapeString(task.ID)))

	sb.WriteByte('\n')
	return sb.String()
}

func formatDeadline(item model.BacklogItem, now time.Time) string {
	d := item.Deadline.In(bizday.Location)
	title := html.EscapeString(strings.TrimSpace(item.Title))
	if now.After(d) {
		return fmt.Sprintf("⚠️ %s\n   ⏰ %s <b>overdue</b>\n", title, bizday.FormatDate(d))
	}
	daysLeft := int(d.Sub(now).Hours()/24) + 1
	return fmt.Sprintf("⏳ %s\n   ⏰ %s · ≈%d d left\n", title, bizday.FormatDate(d), daysLeft)
}
