package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pablozamit/elo-pool/internal/websocket"
)

type WebSocketHandler struct {
	hub *websocket.Hub
}

func NewWebSocketHandler(hub *websocket.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleWebSocket upgrades the connection and registers the player for
// match event notifications.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	playerID, exists := c.Get("playerID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	websocket.ServeWs(h.hub, c.Writer, c.Request, playerID.(string))
}
