package handler

import (
	"net/http"

	"jalrakshak/backend/internal/live"
	"jalrakshak/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten in production!
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades an operator connection to the live complaint
// feed. Only officers may subscribe, so the same bearer token as the
// respond endpoint is required.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	tokenString, ok := bearerToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return
	}
	if _, err := h.validateOfficerToken(tokenString); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &live.WebSocketClient{
		Hub:  h.Hub,
		Conn: conn,
		Send: make(chan models.ComplaintEvent, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
