package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches an upgraded connection to the hub as a subscriber of the
// given session and blocks until the connection drops.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID, userID uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, SessionID: sessionID, UserID: userID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
