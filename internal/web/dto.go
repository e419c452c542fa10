package web

import (
	"habit-planner/internal/bizday"
	"habit-planner/internal/model"
	"habit-planner/internal/service"
)

type backlogItemResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Category      string  `json:"category"`
	Priority      string  `json:"priority"`
	Status        string  `json:"status"`
	Order         int     `json:"order"`
	IsArchived    bool    `json:"is_archived"`
	IsHighlighted bool    `json:"is_highlighted"`
	Deadline      *string `json:"deadline"`
	ScheduledDate *string `json:"scheduled_date"`
	Place         string  `json:"place,omitempty"`
	IsPetAllowed  bool    `json:"is_pet_allowed"`
	SprintID      *string `json:"sprint_id"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func toBacklogItem(item model.BacklogItem) backlogItemResponse {
	return backlogItemResponse{
		ID:            item.ID,
		Title:         item.Title,
		Category:      item.Category,
		Priority:      string(item.Priority),
		Status:        string(item.Status),
		Order:         item.Order,
		IsArchived:    item.IsArchived,
		IsHighlighted: item.IsHighlighted,
		Deadline:      optionalDay(bizday.FormatDatePtr(item.Deadline)),
		ScheduledDate: optionalDay(bizday.FormatDatePtr(item.ScheduledDate)),
		Place:         item.Place,
		IsPetAllowed:  item.IsPetAllowed,
		SprintID:      item.SprintID,
		CreatedAt:     bizday.ISO(item.CreatedAt),
		UpdatedAt:     bizday.ISO(item.UpdatedAt),
	}
}

func toBacklogItems(items []model.BacklogItem) []backlogItemResponse {
	out := make([]backlogItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toBacklogItem(item))
	}
	return out
}

type dailyTaskResponse struct {
	ID            string  `json:"id"`
	SourceID      string  `json:"source_id"`
	SourceType    string  `json:"source_type"`
	TargetDate    string  `json:"target_date"`
	Status        string  `json:"status"`
	Title         string  `json:"title"`
	Order         int     `json:"order"`
	IsHighlighted bool    `json:"is_highlighted"`
	IsOverdue     bool    `json:"is_overdue"`
	GoalProgress  string  `json:"goal_progress,omitempty"`
	CreatedAt     string  `json:"created_at"`
	CompletedAt   *string `json:"completed_at"`
}

func toDailyTask(task model.DailyTask) dailyTaskResponse {
	return dailyTaskResponse{
		ID:            task.ID,
		SourceID:      task.SourceID,
		SourceType:    string(task.SourceType),
		TargetDate:    task.TargetDate,
		Status:        string(task.Status),
		Title:         task.Title,
		Order:         task.Order,
		IsHighlighted: task.IsHighlighted,
		CreatedAt:     bizday.ISO(task.CreatedAt),
		CompletedAt:   bizday.ISOPtr(task.CompletedAt),
	}
}

type dailyViewResponse struct {
	Date         string              `json:"date"`
	Today        string              `json:"today"`
	BusinessDate string              `json:"business_date"`
	IsToday      bool                `json:"is_today"`
	Tasks        []dailyTaskResponse `json:"tasks"`
}

func toDailyView(view *service.DailyView) dailyViewResponse {
	tasks := make([]dailyTaskResponse, 0, len(view.Tasks))
	for _, t := range view.Tasks {
		task := toDailyTask(t.DailyTask)
		task.IsOverdue = t.IsOverdue
		task.GoalProgress = t.GoalProgress
		tasks = append(tasks, task)
	}
	return dailyViewResponse{
		Date:         view.Date,
		Today:        view.Today,
		BusinessDate: view.BusinessDate,
		IsToday:      view.IsToday,
		Tasks:        tasks,
	}
}

type frequencyBody struct {
	Type      string `json:"type"`
	Weekdays  []int  `json:"weekdays,omitempty"`
	MonthDays []int  `json:"month_days,omitempty"`
}

func (f frequencyBody) model() model.Frequency {
	return model.Frequency{Type: model.FrequencyType(f.Type), Weekdays: f.Weekdays, MonthDays: f.MonthDays}
}

type goalBody struct {
	Period      string `json:"period"`
	TargetCount int    `json:"target_count"`
}

func (g *goalBody) model() *model.GoalConfig {
	if g == nil {
		return nil
	}
	return &model.GoalConfig{Period: bizday.Period(g.Period), TargetCount: g.TargetCount}
}

type statsResponse struct {
	WeeklyCount  int     `json:"weekly_count"`
	MonthlyCount int     `json:"monthly_count"`
	LastUpdated  *string `json:"last_updated"`
}

type routineResponse struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	RoutineType   string         `json:"routine_type"`
	Frequency     frequencyBody  `json:"frequency"`
	ScheduledTime string         `json:"scheduled_time"`
	Icon          string         `json:"icon,omitempty"`
	IsHighlighted bool           `json:"is_highlighted"`
	GoalConfig    *goalBody      `json:"goal_config"`
	Stats         *statsResponse `json:"stats"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
}

func toRoutine(r model.Routine) routineResponse {
	out := routineResponse{
		ID:          r.ID,
		Title:       r.Title,
		RoutineType: string(r.RoutineType),
		Frequency: frequencyBody{
			Type:      string(r.Frequency.Type),
			Weekdays:  r.Frequency.Weekdays,
			MonthDays: r.Frequency.MonthDays,
		},
		ScheduledTime: r.ScheduledTime,
		Icon:          r.Icon,
		IsHighlighted: r.IsHighlighted,
		CreatedAt:     bizday.ISO(r.CreatedAt),
		UpdatedAt:     bizday.ISO(r.UpdatedAt),
	}
	if r.GoalConfig != nil {
		out.GoalConfig = &goalBody{Period: string(r.GoalConfig.Period), TargetCount: r.GoalConfig.TargetCount}
	}
	if r.Stats != nil {
		out.Stats = &statsResponse{
			WeeklyCount:  r.Stats.WeeklyCount,
			MonthlyCount: r.Stats.MonthlyCount,
			LastUpdated:  bizday.ISOPtr(r.Stats.LastUpdated),
		}
	}
	return out
}

type sprintResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Goal        string  `json:"goal"`
	Retro       string  `json:"retro"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	CompletedAt *string `json:"completed_at"`
}

func toSprint(s model.Sprint) sprintResponse {
	return sprintResponse{
		ID:          s.ID,
		Name:        s.Name,
		StartDate:   s.StartDate,
		EndDate:     s.EndDate,
		Goal:        s.Goal,
		Retro:       s.Retro,
		Status:      string(s.Status),
		CreatedAt:   bizday.ISO(s.CreatedAt),
		CompletedAt: bizday.ISOPtr(s.CompletedAt),
	}
}

func optionalDay(day string) *string {
	if day == "" {
		return nil
	}
	return &day
}
