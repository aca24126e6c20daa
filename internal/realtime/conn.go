package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn wraps one WebSocket connection attached to the hub
type Conn struct {
	hub  *Hub
	ws   *websocket.Conn
	send chan Frame

	writeWait time.Duration
	pongWait  time.Duration

	closeOnce sync.Once

	// identity of the authenticated user, used as chat sender fallback
	Email string
}

func newConn(hub *Hub, ws *websocket.Conn, email string, sendBuffer int, writeWait, pongWait time.Duration) *Conn {
	return &Conn{
		hub:       hub,
		ws:        ws,
		send:      make(chan Frame, sendBuffer),
		writeWait: writeWait,
		pongWait:  pongWait,
		Email:     email,
	}
}

// enqueue offers a frame to the connection's send buffer without blocking
func (c *Conn) enqueue(f Frame) bool {
	select {
	case c.send <- f:
		return true
	default:
		return false
	}
}

func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump consumes frames from the peer until the connection drops.
// Runs on the serving goroutine of the upgrade handler.
func (c *Conn) readPump() {
	defer func() {
		c.hub.detach <- c
		c.ws.Close()
	}()

	c.ws.SetReadLimit(4096)
	c.ws.SetReadDeadline(time.Now().Add(c.pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("realtime: read error: %v", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Topic == "" {
			continue // ignore malformed frames
		}

		switch frame.Action {
		case "subscribe":
			c.hub.subscribe <- subscription{conn: c, topic: frame.Topic}
		case "unsubscribe":
			c.hub.unsubscribe <- subscription{conn: c, topic: frame.Topic}
		case "publish":
			c.hub.publish <- publication{topic: frame.Topic, body: frame.Body}
		}
	}
}

// writePump flushes queued frames and keeps the connection alive with pings
func (c *Conn) writePump() {
	pingPeriod := (c.pongWait * 9) / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
