package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	edms "github.com/nadwiabd/insight-edms"
	"github.com/nadwiabd/insight-edms/pkg/api"
)

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, api.HealthResponse{
			Service: edms.Name,
			Version: edms.Version,
			Status:  api.HealthUnhealthy,
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, api.HealthResponse{
		Service: edms.Name,
		Version: edms.Version,
		Status:  api.HealthHealthy,
	})
}
