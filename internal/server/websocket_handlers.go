// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"tangerine/internal/models"
	"tangerine/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const wsTicketTTL = 30 * time.Second

// IssueWSTicket handles POST /api/ws/ticket (protected). Browsers cannot set
// headers on WebSocket upgrades, so clients trade their bearer token for a
// short-lived single-use ticket and pass it as a query parameter.
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if s.redis == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Realtime is unavailable",
		})
	}

	ticket := uuid.New().String()
	key := wsTicketKey(ticket)
	value := strconv.FormatUint(uint64(userID), 10)

	if err := s.redis.Set(c.Context(), key, value, wsTicketTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// WebsocketHandler returns the handler for GET /api/ws. Connections register
// with the Hub and then drive their own subscriptions: a client sends
// {"type":"watch_post","post_id":N} to receive that post's comment and
// favorite events, and "unwatch_post" to stop. User-targeted notifications
// arrive without any subscription.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userIDVal := conn.Locals("userID")
		uid, ok := userIDVal.(uint)
		if !ok {
			_ = conn.Close()
			return
		}

		if s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			log.Printf("websocket: failed to register user %d: %v", uid, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		defer s.hub.UnregisterClient(client)

		client.IncomingHandler = func(c *notifications.Client, message []byte) {
			var incoming struct {
				Type   string `json:"type"`
				PostID uint   `json:"post_id"`
			}
			if err := json.Unmarshal(message, &incoming); err != nil {
				log.Printf("websocket: invalid message from user %d", uid)
				return
			}

			switch incoming.Type {
			case "watch_post":
				if incoming.PostID == 0 {
					return
				}
				s.hub.WatchPost(c, incoming.PostID)
				if ack, err := json.Marshal(map[string]interface{}{
					"type": "watching",
					"payload": map[string]interface{}{
						"post_id": incoming.PostID,
					},
				}); err == nil {
					c.TrySend(ack)
				}

			case "unwatch_post":
				if incoming.PostID == 0 {
					return
				}
				s.hub.UnwatchPost(c, incoming.PostID)

			case "ping":
				if pong, err := json.Marshal(map[string]string{"type": "pong"}); err == nil {
					c.TrySend(pong)
				}
			}
		}

		if welcome, err := json.Marshal(map[string]interface{}{
			"type": "connected",
			"payload": map[string]interface{}{
				"user_id": uid,
			},
		}); err == nil {
			client.TrySend(welcome)
		}

		go client.WritePump()

		// Read pump runs in the main handler goroutine (blocking)
		client.ReadPump()
	})
}
