package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/counterpoint-api/internal/services"
	"github.com/gin-gonic/gin"
)

const healthPingTimeout = 2 * time.Second

type HealthHandler struct {
	history *services.HistoryService
}

func NewHealthHandler(history *services.HistoryService) *HealthHandler {
	return &HealthHandler{history: history}
}

// HealthCheck returns the health status of the API and its optional history store
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := "healthy"
	historyStatus := "disabled"

	if h.history.Enabled() {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		if err := h.history.Ping(ctx); err != nil {
			status = "degraded"
			historyStatus = "unreachable"
		} else {
			historyStatus = "enabled"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"history": gin.H{
			"status": historyStatus,
		},
	})
}
