package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Formatted puzzle encodings
	// can run a few hundred bytes, so this is generous.
	maxMessageSize = 4096

	// Outbound buffer per connection; sends are fire-and-forget and a
	// full buffer drops the frame.
	sendBufferSize = 256
)

// Client is one live WebSocket connection. Its room binding lives in
// roomID, which is empty while unbound and is guarded by the hub mutex.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	id     string
	roomID string
}

// readPump pumps inbound frames from the connection into the hub's
// dispatcher. It owns the read side; on any read error the connection is
// torn down and the hub performs roster cleanup.
func (c *Client) readPump() {
	defer func() {
		c.hub.disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read failed", "connection", c.id, "err", err)
			}
			break
		}
		c.hub.dispatch(c, data)
	}
}

// writePump pumps frames from the send channel to the connection and
// keeps the peer alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue hands a frame to the write pump without blocking; a saturated
// connection simply misses the frame.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		c.hub.log.Warn("send buffer full, dropping frame", "connection", c.id)
	}
}
