package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"habit-planner/internal/model"
	"habit-planner/internal/repository"
	"habit-planner/internal/service"
)

type createBacklogRequest struct {
	Title         string `json:"title"`
	Category      string `json:"category"`
	Priority      string `json:"priority"`
	Deadline      string `json:"deadline"`
	ScheduledDate string `json:"scheduled_date"`
	Place         string `json:"place"`
	IsPetAllowed  bool   `json:"is_pet_allowed"`
	IsHighlighted bool   `json:"is_highlighted"`
	SprintID      string `json:"sprint_id"`
}

type updateBacklogRequest struct {
	Title         *string `json:"title"`
	Category      *string `json:"category"`
	Priority      *string `json:"priority"`
	Status        *string `json:"status"`
	Deadline      *string `json:"deadline"`
	Place         *string `json:"place"`
	IsPetAllowed  *bool   `json:"is_pet_allowed"`
	IsHighlighted *bool   `json:"is_highlighted"`
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

type dateRequest struct {
	Date string `json:"date"`
}

func (s *Server) handleListBacklog(c *gin.Context) {
	filter := repository.BacklogFilter{
		Category:        c.Query("category"),
		Status:          model.BacklogStatus(c.Query("status")),
		SprintID:        c.Query("sprint_id"),
		IncludeArchived: c.Query("archived") == "true",
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "limit must be a non-negative integer",
			})
			return
		}
		filter.Limit = limit
	}

	items, err := s.svc.Backlog.List(c.Request.Context(), filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toBacklogItems(items))
}

func (s *Server) handleCreateBacklog(c *gin.Context) {
	var req createBacklogRequest
	if !bind(c, &req) {
		return
	}

	item, err := s.svc.Backlog.Add(c.Request.Context(), service.BacklogInput{
		Title:         req.Title,
		Category:      req.Category,
		Priority:      model.Priority(req.Priority),
		Deadline:      req.Deadline,
		ScheduledDate: req.ScheduledDate,
		Place:         req.Place,
		IsPetAllowed:  req.IsPetAllowed,
		IsHighlighted: req.IsHighlighted,
		SprintID:      req.SprintID,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, toBacklogItem(*item))
}

func (s *Server) handleGetBacklog(c *gin.Context) {
	item, err := s.svc.Backlog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toBacklogItem(*item))
}

func (s *Server) handleUpdateBacklog(c *gin.Context) {
	var req updateBacklogRequest
	if !bind(c, &req) {
		return
	}

	patch := service.BacklogPatch{
		Title:         req.Title,
		Category:      req.Category,
		Deadline:      req.Deadline,
		Place:         req.Place,
		IsPetAllowed:  req.IsPetAllowed,
		IsHighlighted: req.IsHighlighted,
	}
	if req.Priority != nil {
		p := model.Priority(*req.Priority)
		patch.Priority = &p
	}
	if req.Status != nil {
		st := model.BacklogStatus(*req.Status)
		patch.Status = &st
	}

	item, err := s.svc.Backlog.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toBacklogItem(*item))
}

func (s *Server) handleDeleteBacklog(c *gin.Context) {
	if err := s.svc.Backlog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Item deleted",
	})
}

func (s *Server) handleArchiveBacklog(c *gin.Context) {
	req := struct {
		Archived *bool `json:"archived"`
	}{}
	if !bind(c, &req) {
		return
	}
	archived := req.Archived == nil || *req.Archived

	item, err := s.svc.Backlog.SetArchived(c.Request.Context(), c.Param("id"), archived)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toBacklogItem(*item))
}

func (s *Server) handleReorderBacklog(c *gin.Context) {
	var req reorderRequest
	if !bind(c, &req) {
		return
	}
	if err := s.svc.Backlog.Reorder(c.Request.Context(), req.IDs); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handlePickBacklog(c *gin.Context) {
	var req dateRequest
	if !bind(c, &req) {
		return
	}

	task, created, err := s.svc.Daily.Pick(c.Request.Context(), c.Param("id"), req.Date)
	if err != nil {
		s.fail(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond(c, status, toDailyTask(*task))
}
