package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"habit-planner/internal/model"
	"habit-planner/internal/service"
)

type createRoutineRequest struct {
	Title         string        `json:"title"`
	RoutineType   string        `json:"routine_type"`
	Frequency     frequencyBody `json:"frequency"`
	ScheduledTime string        `json:"scheduled_time"`
	Icon          string        `json:"icon"`
	IsHighlighted bool          `json:"is_highlighted"`
	GoalConfig    *goalBody     `json:"goal_config"`
}

type updateRoutineRequest struct {
	Title         *string        `json:"title"`
	RoutineType   *string        `json:"routine_type"`
	Frequency     *frequencyBody `json:"frequency"`
	ScheduledTime *string        `json:"scheduled_time"`
	Icon          *string        `json:"icon"`
	IsHighlighted *bool          `json:"is_highlighted"`
	GoalConfig    *goalBody      `json:"goal_config"`
	ClearGoal     bool           `json:"clear_goal"`
}

func (s *Server) handleListRoutines(c *gin.Context) {
	routines, err := s.svc.Routines.List(c.Request.Context(), model.RoutineType(c.Query("type")))
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]routineResponse, 0, len(routines))
	for _, r := range routines {
		out = append(out, toRoutine(r))
	}
	respond(c, http.StatusOK, out)
}

func (s *Server) handleCreateRoutine(c *gin.Context) {
	var req createRoutineRequest
	if !bind(c, &req) {
		return
	}

	routine, err := s.svc.Routines.Create(c.Request.Context(), service.RoutineInput{
		Title:         req.Title,
		RoutineType:   model.RoutineType(req.RoutineType),
		Frequency:     req.Frequency.model(),
		ScheduledTime: req.ScheduledTime,
		Icon:          req.Icon,
		IsHighlighted: req.IsHighlighted,
		GoalConfig:    req.GoalConfig.model(),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, toRoutine(*routine))
}

func (s *Server) handleGetRoutine(c *gin.Context) {
	routine, err := s.svc.Routines.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toRoutine(*routine))
}

func (s *Server) handleUpdateRoutine(c *gin.Context) {
	var req updateRoutineRequest
	if !bind(c, &req) {
		return
	}

	patch := service.RoutinePatch{
		Title:         req.Title,
		ScheduledTime: req.ScheduledTime,
		Icon:          req.Icon,
		IsHighlighted: req.IsHighlighted,
		GoalConfig:    req.GoalConfig.model(),
		ClearGoal:     req.ClearGoal,
	}
	if req.RoutineType != nil {
		rt := model.RoutineType(*req.RoutineType)
		patch.RoutineType = &rt
	}
	if req.Frequency != nil {
		f := req.Frequency.model()
		patch.Frequency = &f
	}

	routine, err := s.svc.Routines.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toRoutine(*routine))
}

func (s *Server) handleDeleteRoutine(c *gin.Context) {
	if err := s.svc.Routines.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Routine deleted",
	})
}
