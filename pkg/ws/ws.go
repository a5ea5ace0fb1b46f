// Package ws pushes server events to WebSocket subscribers using
// gorilla/websocket. Clients subscribe to a topic (a store id) and receive
// every message published on it.
//
//	hub := ws.NewHub(logger)
//	go hub.Run(ctx)
//
//	// handler
//	ws.Upgrade(w, r, hub, storeID)
//
//	// anywhere
//	hub.Publish(storeID, payload)
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024 // subscribers only send control frames
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default (allow-all) origin checker. Call it
// once at boot, before serving.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// AllowOrigins returns an origin checker admitting the listed origins. A "*"
// entry admits everything; requests without an Origin header are not from a
// browser and pass.
func AllowOrigins(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[strings.ToLower(strings.TrimRight(o, "/"))] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[strings.ToLower(origin)]
	}
}

// ── Client ───────────────────────────────────────────────────────────────────

// Client is one connected subscriber.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	topic string
	send  chan []byte
}

// readPump drains control frames until the peer goes away.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("ws: unexpected close", "topic", c.topic, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// ── Hub ──────────────────────────────────────────────────────────────────────

type publication struct {
	topic string
	data  []byte
}

// Hub tracks subscribers per topic. All map access happens on the Run
// goroutine.
type Hub struct {
	topics     map[string]map[*Client]bool
	publish    chan publication
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	count      atomic.Int64
	log        *slog.Logger

	// OnCountChange is called from the Run goroutine with the new total.
	OnCountChange func(total int)
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		topics:     make(map[string]map[*Client]bool),
		publish:    make(chan publication, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run is the hub event loop. It returns when ctx is done, closing every
// client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, clients := range h.topics {
				for c := range clients {
					close(c.send)
				}
			}
			h.topics = map[string]map[*Client]bool{}
			h.setCount(0)
			return

		case c := <-h.register:
			if h.topics[c.topic] == nil {
				h.topics[c.topic] = map[*Client]bool{}
			}
			h.topics[c.topic][c] = true
			h.setCount(h.count.Load() + 1)
			h.log.Info("ws: client connected", "topic", c.topic, "total", h.count.Load())

		case c := <-h.unregister:
			h.drop(c)

		case p := <-h.publish:
			for c := range h.topics[p.topic] {
				select {
				case c.send <- p.data:
				default:
					h.drop(c)
				}
			}
		}
	}
}

// Publish queues data for every subscriber of topic. It never blocks; when
// the queue is full the message is dropped.
func (h *Hub) Publish(topic string, data []byte) bool {
	select {
	case h.publish <- publication{topic: topic, data: data}:
		return true
	default:
		return false
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int { return int(h.count.Load()) }

func (h *Hub) drop(c *Client) {
	clients, ok := h.topics[c.topic]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.topics, c.topic)
	}
	close(c.send)
	h.setCount(h.count.Load() - 1)
	h.log.Info("ws: client disconnected", "topic", c.topic, "total", h.count.Load())
}

func (h *Hub) setCount(n int64) {
	h.count.Store(n)
	if h.OnCountChange != nil {
		h.OnCountChange(int(n))
	}
}

// ── Upgrade ──────────────────────────────────────────────────────────────────

// Upgrade upgrades the connection and subscribes it to topic.
func Upgrade(w http.ResponseWriter, r *http.Request, hub *Hub, topic string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{hub: hub, conn: conn, topic: topic, send: make(chan []byte, 64)}
	select {
	case hub.register <- c:
	case <-hub.done:
		conn.Close()
		return nil
	}
	go c.writePump()
	go c.readPump()
	return nil
}
