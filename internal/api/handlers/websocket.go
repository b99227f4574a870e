package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/adaptiveops/optimizer-backend-go/internal/websocket"
)

// WebSocketHandler upgrades the connection and registers the client with
// the hub
func (h *Handlers) WebSocketHandler(hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		websocket.HandleWebSocket(hub, c.Writer, c.Request)
	}
}
