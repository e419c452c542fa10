package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"habit-planner/internal/service"
)

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// fail maps service errors onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrPreconditionFailed):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	default:
		s.logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// bind decodes the JSON body into dst. An empty body leaves dst untouched.
func bind(c *gin.Context, dst interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return false
	}
	return true
}
