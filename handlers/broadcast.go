// handlers/broadcast.go - Reward ticker: polling endpoint and live socket
package handlers

import (
	"time"

	"mathking/models"
	"mathking/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const wsWriteTimeout = 10 * time.Second

// GetBroadcasts returns the newest reward events
// GET /api/broadcast
func GetBroadcasts(c *fiber.Ctx) error {
	list, err := gameService.RecentBroadcasts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(utils.NonNil(list))
}

// WebSocketUpgrade rejects plain HTTP requests to the socket route.
func WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// BroadcastSocket pushes every new broadcast to the client as JSON
// GET /api/broadcast/ws
func BroadcastSocket(conn *websocket.Conn) {
	feed, cancel := broadcastHub.Subscribe()
	defer cancel()

	zap.L().Debug("ticker client connected", zap.Int("subscribers", broadcastHub.Subscribers()))

	// The client never sends anything meaningful; reading only detects close.
	// The conn goes back to a pool once this handler returns, so the reader
	// must be finished by then.
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pushFeed(conn, feed)

	// Closing the socket unblocks the reader if the feed ended first.
	_ = conn.Close()
	<-done
}

type jsonWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v interface{}) error
}

// pushFeed writes broadcasts until the feed closes or a write fails.
func pushFeed(w jsonWriter, feed <-chan models.Broadcast) {
	for b := range feed {
		_ = w.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := w.WriteJSON(b); err != nil {
			zap.L().Debug("ticker client write failed", zap.Error(err))
			return
		}
	}
}
