package handler

import (
	"ai-chat-be/internal/pkg/logger"
	internalWS "ai-chat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// EventsHandler upgrades clients onto the push socket that carries title
// updates and session deletes. Sessions are anonymous so there is no
// handshake auth; clients subscribe to the whole event feed.
type EventsHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewEventsHandler(hub *internalWS.Hub, log logger.ILogger) *EventsHandler {
	return &EventsHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *EventsHandler) ServeWs(c *fiber.Ctx) error {
	// Upgrade via Fiber WebSocket Middleware
	// We handle the upgrade here using the helper which automatically hijacks the connection
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(c *websocket.Conn) {
			h.logger.Info("EventsHandler", "Starting WebSocket session", nil)
			internalWS.ServeWs(h.hub, c)
			h.logger.Info("EventsHandler", "WebSocket session ended", nil)
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the event feed routes.
func (h *EventsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
