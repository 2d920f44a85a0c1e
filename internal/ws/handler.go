package ws

import (
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Identify resolves the authenticated user of an upgrade request.
type Identify func(c fiber.Ctx) (uuid.UUID, bool)

type Handler struct {
	hub      *Hub
	identify Identify
	logger   *log.Logger
}

func NewHandler(hub *Hub, identify Identify, logger *log.Logger) *Handler {
	return &Handler{hub: hub, identify: identify, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleNotificationsWS upgrades an authenticated request and subscribes the socket to
// notifications addressed to its user.
func (h *Handler) HandleNotificationsWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}
	userID, ok := h.identify(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if h.logger != nil {
				h.logger.Printf("[WS] upgrade failed | user=%s err=%v", userID, err)
			}
			return
		}

		client := NewClient(h.hub, conn, userID)
		h.hub.Register(client)
		if h.logger != nil {
			h.logger.Printf("[WS] subscribed | user=%s", userID)
		}
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}
