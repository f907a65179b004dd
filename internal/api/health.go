package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health handles GET /api/health: probes the data store and reports
// per-service status. Responds 200 even when degraded so load balancers
// get the detail instead of a dropped connection.
func (h *Handler) Health(c *gin.Context) {
	services := gin.H{
		"app": "ok",
		"llm": "ok",
	}
	status := "ok"

	if err := h.store.HealthCheck(c.Request.Context()); err != nil {
		services["database"] = "unavailable"
		status = "degraded"
	} else {
		services["database"] = "ok"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"services": services,
	})
}
