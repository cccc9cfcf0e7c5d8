// Package feed broadcasts bus events to websocket clients as JSON frames.
package feed

import (
	"context"
	"net/http"
	"slices"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/colonyops/beacon/internal/core/eventbus"
	"github.com/colonyops/beacon/internal/core/logging"
	"github.com/colonyops/beacon/pkg/randid"
)

// eventTypes are the bus events forwarded to clients, in display order.
var eventTypes = []string{
	string(eventbus.EventGeneratorFired),
	string(eventbus.EventNotificationChanged),
	string(eventbus.EventToastChanged),
}

type outbound struct {
	to  *Client // nil broadcasts
	msg Message
}

// Hub owns the client set. All membership changes and sends happen on the
// Run goroutine.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	outbox     chan outbound
	done       chan struct{}

	clients  map[*Client]bool
	count    atomic.Int64
	onCount  func(int)
	snapshot func() any
	logger   zerolog.Logger
	sendSize int
}

// Option configures a Hub.
type Option func(*Hub)

// WithSnapshot sets the function whose result is sent to each new client.
func WithSnapshot(fn func() any) Option {
	return func(h *Hub) { h.snapshot = fn }
}

// WithClientCount observes the number of connected clients.
func WithClientCount(fn func(int)) Option {
	return func(h *Hub) { h.onCount = fn }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

// NewHub creates a hub whose queues hold buffer frames.
func NewHub(buffer int, opts ...Option) *Hub {
	h := &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbox:     make(chan outbound, buffer),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		logger:     zerolog.Nop(),
		sendSize:   buffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.counted()
			h.logger.Info().Str("client_id", c.ID).Int("clients", len(h.clients)).Msg("feed client joined")
			if h.snapshot != nil {
				h.deliver(c, Message{Type: TypeSnapshot, Data: h.snapshot()})
			}
		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				h.logger.Info().Str("client_id", c.ID).Int("clients", len(h.clients)).Msg("feed client left")
			}
		case out := <-h.outbox:
			if out.to != nil {
				if h.clients[out.to] {
					h.deliver(out.to, out.msg)
				}
				continue
			}
			for c := range h.clients {
				if c.Wants(out.msg.Type) {
					h.deliver(c, out.msg)
				}
			}
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Broadcast queues msgType/data for every interested client. It never blocks;
// frames are dropped when the queue is full.
func (h *Hub) Broadcast(msgType string, data any) {
	h.enqueue(outbound{msg: Message{Type: msgType, Data: data}})
}

// Subscribe forwards every bus event to the feed.
func (h *Hub) Subscribe(bus *eventbus.EventBus) {
	bus.SubscribeGeneratorFired(func(p eventbus.GeneratorFiredPayload) {
		h.Broadcast(string(eventbus.EventGeneratorFired), p.Event)
	})
	bus.SubscribeNotificationChanged(func(p eventbus.NotificationChangedPayload) {
		h.Broadcast(string(eventbus.EventNotificationChanged), notificationFrame{
			Kind: string(p.Kind), Notification: p.Notification, Unread: p.Unread,
		})
	})
	bus.SubscribeToastChanged(func(p eventbus.ToastChangedPayload) {
		h.Broadcast(string(eventbus.EventToastChanged), toastFrame{
			Kind: string(p.Kind), Toast: p.Toast, Reason: string(p.Reason),
		})
	})
}

// Handler upgrades requests to websocket clients. An empty origins list
// accepts same-host requests only; "*" accepts any origin.
func (h *Hub) Handler(origins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(origins),
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logger.Warn().Err(err).Str("ip", c.ClientIP()).Msg("feed upgrade failed")
			return
		}

		id := randid.Generate(8)
		ctx := logging.WithClientID(c.Request.Context(), id)
		client := &Client{
			ID:     id,
			hub:    h,
			conn:   conn,
			send:   make(chan []byte, h.sendSize),
			logger: h.logger.With().Ctx(ctx).Logger().Hook(logging.ContextHook{}),
		}

		select {
		case h.register <- client:
		case <-h.done:
			_ = conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

func (h *Hub) direct(c *Client, msg Message) {
	h.enqueue(outbound{to: c, msg: msg})
}

func (h *Hub) enqueue(out outbound) {
	select {
	case h.outbox <- out:
	default:
		h.logger.Warn().Str("type", out.msg.Type).Msg("feed queue full, frame dropped")
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// deliver encodes and queues msg for c, dropping slow clients.
func (h *Hub) deliver(c *Client, msg Message) {
	data, err := encode(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msg.Type).Msg("encode feed frame")
		return
	}
	select {
	case c.send <- data:
	default:
		h.logger.Warn().Str("client_id", c.ID).Msg("feed client too slow, disconnecting")
		h.drop(c)
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.counted()
}

func (h *Hub) counted() {
	n := len(h.clients)
	h.count.Store(int64(n))
	if h.onCount != nil {
		h.onCount(n)
	}
}

func checkOrigin(origins []string) func(*http.Request) bool {
	if slices.Contains(origins, "*") {
		return func(*http.Request) bool { return true }
	}
	if len(origins) == 0 {
		return nil // gorilla default: same host
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}
