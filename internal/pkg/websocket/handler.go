package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler for WebSocket connections
type Handler struct {
	hub    *Hub
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// HandleConnection godoc
// @Summary Subscribe to live notifications
// @Description Upgrades the connection to a WebSocket that receives the caller's notifications as they are created. Browsers may pass the JWT as the token query parameter.
// @Tags notifications
// @Security BearerAuth
// @Param token query string false "JWT access token"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /notifications/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context"})
		return
	}
	userID, ok := userIDInterface.(int64)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		userID: userID,
		logger: h.logger,
	}
	if !h.hub.enroll(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
