package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"habit-planner/internal/service"
)

// Services are the business operations the API exposes.
type Services struct {
	Backlog  *service.BacklogService
	Daily    *service.DailyService
	Routines *service.RoutineService
	Sprints  *service.SprintService
}

// Server is the planner JSON API.
type Server struct {
	svc    Services
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new web server
func NewServer(svc Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		svc:    svc,
		router: router,
		logger: logger,
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	api := router.Group("/api")
	{
		backlog := api.Group("/backlog")
		backlog.GET("", s.handleListBacklog)
		backlog.POST("", s.handleCreateBacklog)
		backlog.POST("/reorder", s.handleReorderBacklog)
		backlog.GET("/:id", s.handleGetBacklog)
		backlog.PATCH("/:id", s.handleUpdateBacklog)
		backlog.DELETE("/:id", s.handleDeleteBacklog)
		backlog.POST("/:id/archive", s.handleArchiveBacklog)
		backlog.POST("/:id/pick", s.handlePickBacklog)

		daily := api.Group("/daily")
		daily.GET("", s.handleDailyView)
		daily.POST("", s.handleQuickAdd)
		daily.POST("/reorder", s.handleReorderDaily)
		daily.POST("/generate", s.handleGenerate)
		daily.PATCH("/:id", s.handleUpdateDaily)
		daily.POST("/:id/status", s.handleSetStatus)
		daily.POST("/:id/skip", s.handleSkip)
		daily.POST("/:id/postpone", s.handlePostpone)

		routines := api.Group("/routines")
		routines.GET("", s.handleListRoutines)
		routines.POST("", s.handleCreateRoutine)
		routines.GET("/:id", s.handleGetRoutine)
		routines.PATCH("/:id", s.handleUpdateRoutine)
		routines.DELETE("/:id", s.handleDeleteRoutine)

		sprints := api.Group("/sprints")
		sprints.GET("", s.handleListSprints)
		sprints.POST("", s.handleCreateSprint)
		sprints.GET("/active", s.handleActiveSprint)
		sprints.GET("/suggestions", s.handleSprintSuggestions)
		sprints.POST("/tasks/:taskId/unassign", s.handleUnassign)
		sprints.GET("/:id", s.handleGetSprint)
		sprints.PATCH("/:id", s.handleUpdateSprint)
		sprints.DELETE("/:id", s.handleDeleteSprint)
		sprints.POST("/:id/complete", s.handleCompleteSprint)
		sprints.GET("/:id/tasks", s.handleListSprintTasks)
		sprints.POST("/:id/tasks", s.handleAddSprintTasks)
	}

	return s
}

// Handler exposes the router for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
