package server

import (
	"encoding/json"

	"snapfeed/internal/auth"
	"snapfeed/internal/middleware"
	"snapfeed/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// rejectionPayload encodes a subscription refusal so the error text
// cannot break the JSON framing.
func rejectionPayload(err error) []byte {
	payload, merr := json.Marshal(fiber.Map{"error": err.Error()})
	if merr != nil {
		return []byte(`{"error":"subscription rejected"}`)
	}
	return payload
}

// FeedEventsHandler handles GET /feed/events: an authenticated websocket
// subscription to live post create/update/delete events.
func (s *Server) FeedEventsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := s.requireIdentity(c); err != nil {
			return models.RespondWithError(c, err)
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return models.RespondWithError(c, models.NewValidationError("Websocket upgrade required"))
		}

		return websocket.New(func(conn *websocket.Conn) {
			identity, _ := conn.Locals(middleware.IdentityLocal).(auth.Identity)

			client, err := s.hub.Register(conn)
			if err != nil {
				_ = conn.WriteMessage(websocket.TextMessage, rejectionPayload(err))
				_ = conn.Close()
				return
			}
			middleware.Logger.Debug("feed subscriber connected", "user_id", identity.UserID)

			// Write pump in a goroutine; read pump blocks until the peer
			// disconnects and unregisters the client.
			go client.WritePump()
			client.ReadPump()
		})(c)
	}
}
