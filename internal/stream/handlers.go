package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Guard decides whether the caller may watch sessionID. It returns the HTTP
// error to answer with.
type Guard func(c *fiber.Ctx, sessionID string) error

// RegisterRoutes exposes the viewer socket a map renderer connects to for
// live metrics of one session. guard may be nil.
func RegisterRoutes(r fiber.Router, hub *Hub, authMiddleware fiber.Handler, guard Guard) {
	r.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	r.Get("/ws/:sessionID", authMiddleware, func(c *fiber.Ctx) error {
		if guard != nil {
			if err := guard(c, c.Params("sessionID")); err != nil {
				return err
			}
		}
		return c.Next()
	}, websocket.New(func(c *websocket.Conn) {
		client := hub.Register(c.Params("sessionID"))
		defer hub.Unregister(client)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case msg, ok := <-client.Send:
				if !ok {
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}))
}
