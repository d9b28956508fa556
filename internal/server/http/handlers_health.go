package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type healthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "healthy", Timestamp: time.Now().UTC()})
}

// healthDetailed probes the database; a degraded report still returns 200
// so load balancers can distinguish "up but impaired" from "down".
func (s *Server) healthDetailed(c *gin.Context) {
	components := map[string]string{"database": "healthy"}
	status := "healthy"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		s.log.Error("database health check failed", zap.Error(err))
		components["database"] = "unhealthy"
		status = "degraded"
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC(),
		Components: components,
	})
}
