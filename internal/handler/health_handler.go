package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	judgeProvider string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(judgeProvider string) *HealthHandler {
	return &HealthHandler{judgeProvider: judgeProvider}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.judgeProvider == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "no judge provider configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "judge_provider": h.judgeProvider})
}
