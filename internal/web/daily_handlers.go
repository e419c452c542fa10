package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"habit-planner/internal/service"
)

type quickAddRequest struct {
	Title         string `json:"title"`
	Date          string `json:"date"`
	Category      string `json:"category"`
	IsHighlighted bool   `json:"is_highlighted"`
}

type updateDailyRequest struct {
	Title         *string `json:"title"`
	IsHighlighted *bool   `json:"is_highlighted"`
}

type statusRequest struct {
	Completed bool `json:"completed"`
}

type postponeRequest struct {
	// Date is the new day; null returns the task to the backlog.
	Date *string `json:"date"`
}

func (s *Server) handleDailyView(c *gin.Context) {
	view, err := s.svc.Daily.View(c.Request.Context(), c.Query("date"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toDailyView(view))
}

func (s *Server) handleQuickAdd(c *gin.Context) {
	var req quickAddRequest
	if !bind(c, &req) {
		return
	}

	task, err := s.svc.Daily.QuickAdd(c.Request.Context(), service.QuickAddInput{
		Title:         req.Title,
		Date:          req.Date,
		Category:      req.Category,
		IsHighlighted: req.IsHighlighted,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, toDailyTask(*task))
}

func (s *Server) handleUpdateDaily(c *gin.Context) {
	var req updateDailyRequest
	if !bind(c, &req) {
		return
	}

	task, err := s.svc.Daily.Update(c.Request.Context(), c.Param("id"), service.DailyPatch{
		Title:         req.Title,
		IsHighlighted: req.IsHighlighted,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toDailyTask(*task))
}

func (s *Server) handleSetStatus(c *gin.Context) {
	var req statusRequest
	if !bind(c, &req) {
		return
	}

	task, err := s.svc.Daily.SetStatus(c.Request.Context(), c.Param("id"), req.Completed)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toDailyTask(*task))
}

func (s *Server) handleSkip(c *gin.Context) {
	task, err := s.svc.Daily.Skip(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toDailyTask(*task))
}

func (s *Server) handlePostpone(c *gin.Context) {
	var req postponeRequest
	if !bind(c, &req) {
		return
	}

	task, err := s.svc.Daily.Postpone(c.Request.Context(), c.Param("id"), req.Date)
	if err != nil {
		s.fail(c, err)
		return
	}
	if task == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
		return
	}
	respond(c, http.StatusOK, toDailyTask(*task))
}

func (s *Server) handleReorderDaily(c *gin.Context) {
	var req reorderRequest
	if !bind(c, &req) {
		return
	}
	if err := s.svc.Daily.Reorder(c.Request.Context(), req.IDs); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleGenerate expands routines for the requested date, defaulting to the
// business date.
func (s *Server) handleGenerate(c *gin.Context) {
	var req dateRequest
	if !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var (
		created int
		err     error
	)
	if req.Date == "" {
		created, err = s.svc.Routines.ExpandBusinessDate(ctx)
	} else {
		created, err = s.svc.Routines.Expand(ctx, req.Date)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"created": created})
}
