package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adaptiveops/optimizer-backend-go/pkg/utils"
)

// Health returns the health status of the service
func (h *Handlers) Health(c *gin.Context) {
	status := h.loop.GetStatus()

	utils.SendSuccess(c, gin.H{
		"status":       "healthy",
		"timestamp":    time.Now().Format(time.RFC3339),
		"service":      "optimizer-backend-go",
		"loop_running": status.IsRunning,
		"websocket":    h.wsHub.Stats(),
	})
}
