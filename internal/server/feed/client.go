package feed

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Client is one websocket connection.
type Client struct {
	ID string

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger zerolog.Logger

	mu       sync.RWMutex
	channels map[string]bool // nil means every channel
}

// Wants reports whether the client receives msgType. Control frames are
// always delivered.
func (c *Client) Wants(msgType string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.channels == nil {
		return true
	}
	return c.channels[msgType]
}

func (c *Client) subscribe(channels []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channels == nil {
		c.channels = make(map[string]bool)
	}
	for _, ch := range channels {
		c.channels[ch] = true
	}
}

func (c *Client) unsubscribe(channels []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channels == nil {
		c.channels = make(map[string]bool, len(eventTypes))
		for _, t := range eventTypes {
			c.channels[t] = true
		}
	}
	for _, ch := range channels {
		delete(c.channels, ch)
	}
}

// readPump handles incoming frames until the connection fails.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("feed read failed")
			}
			return
		}
		c.handle(data)
	}
}

// writePump drains the send queue and keeps the connection alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handle(data []byte) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		c.hub.direct(c, Message{Type: TypeError, Data: "invalid message"})
		return
	}

	switch req.Type {
	case TypePing:
		c.hub.direct(c, Message{Type: TypePong})
	case TypeSubscribe:
		c.subscribe(req.Channels)
		c.hub.direct(c, Message{Type: TypeSubscribed, Data: req.Channels})
	case TypeUnsubscribe:
		c.unsubscribe(req.Channels)
		c.hub.direct(c, Message{Type: TypeSubscribed, Data: c.subscribed()})
	default:
		c.hub.direct(c, Message{Type: TypeError, Data: "unknown message type " + req.Type})
	}
}

func (c *Client) subscribed() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(eventTypes))
	for _, t := range eventTypes {
		if c.channels == nil || c.channels[t] {
			out = append(out, t)
		}
	}
	return out
}
