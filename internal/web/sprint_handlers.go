package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"habit-planner/internal/model"
	"habit-planner/internal/service"
)

type createSprintRequest struct {
	Name          string   `json:"name"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	Goal          string   `json:"goal"`
	TaskIDs       []string `json:"task_ids"`
	NewTaskTitles []string `json:"new_task_titles"`
}

type updateSprintRequest struct {
	Name      *string `json:"name"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Goal      *string `json:"goal"`
	Retro     *string `json:"retro"`
}

type unassignRequest struct {
	// Reschedule selects the rescheduling variant; Date null then means
	// back to the backlog stock.
	Reschedule bool    `json:"reschedule"`
	Date       *string `json:"date"`
}

func (s *Server) handleListSprints(c *gin.Context) {
	sprints, err := s.svc.Sprints.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]sprintResponse, 0, len(sprints))
	for _, sp := range sprints {
		out = append(out, toSprint(sp))
	}
	respond(c, http.StatusOK, out)
}

func (s *Server) handleCreateSprint(c *gin.Context) {
	var req createSprintRequest
	if !bind(c, &req) {
		return
	}

	sprint, err := s.svc.Sprints.Create(c.Request.Context(), service.SprintInput{
		Name:          req.Name,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Goal:          req.Goal,
		TaskIDs:       req.TaskIDs,
		NewTaskTitles: req.NewTaskTitles,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, toSprint(*sprint))
}

func (s *Server) handleActiveSprint(c *gin.Context) {
	sprint, err := s.svc.Sprints.GetActive(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if sprint == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
		return
	}
	respond(c, http.StatusOK, toSprint(*sprint))
}

func (s *Server) handleSprintSuggestions(c *gin.Context) {
	items, err := s.svc.Sprints.FindUnassignedInRange(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toBacklogItems(items))
}

func (s *Server) handleGetSprint(c *gin.Context) {
	sprint, err := s.svc.Sprints.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toSprint(*sprint))
}

func (s *Server) handleUpdateSprint(c *gin.Context) {
	var req updateSprintRequest
	if !bind(c, &req) {
		return
	}

	sprint, err := s.svc.Sprints.Update(c.Request.Context(), c.Param("id"), service.SprintPatch{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Goal:      req.Goal,
		Retro:     req.Retro,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toSprint(*sprint))
}

func (s *Server) handleDeleteSprint(c *gin.Context) {
	unassign := c.Query("unassign") == "true"
	if err := s.svc.Sprints.Delete(c.Request.Context(), c.Param("id"), unassign); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Sprint deleted",
	})
}

func (s *Server) handleCompleteSprint(c *gin.Context) {
	req := struct {
		Retro string `json:"retro"`
	}{}
	if !bind(c, &req) {
		return
	}

	sprint, err := s.svc.Sprints.Complete(c.Request.Context(), c.Param("id"), req.Retro)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toSprint(*sprint))
}

func (s *Server) handleListSprintTasks(c *gin.Context) {
	items, err := s.svc.Sprints.ListTasks(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toBacklogItems(items))
}

func (s *Server) handleAddSprintTasks(c *gin.Context) {
	req := struct {
		TaskIDs []string `json:"task_ids"`
	}{}
	if !bind(c, &req) {
		return
	}

	n, err := s.svc.Sprints.AddTasks(c.Request.Context(), c.Param("id"), req.TaskIDs)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"assigned": n})
}

func (s *Server) handleUnassign(c *gin.Context) {
	var req unassignRequest
	if !bind(c, &req) {
		return
	}

	var (
		item *model.BacklogItem
		err  error
	)
	if req.Reschedule {
		item, err = s.svc.Sprints.UnassignAndReschedule(c.Request.Context(), c.Param("taskId"), req.Date)
	} else {
		item, err = s.svc.Sprints.UnassignOnly(c.Request.Context(), c.Param("taskId"))
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toBacklogItem(*item))
}
