package controllers

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same policy as CORS: any origin may subscribe
	},
}

// ActivityHub fans activity change events out to every connected subscriber.
type ActivityHub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan ActivityEvent
	mu        sync.Mutex
	closed    bool
	done      chan struct{}
}

// NewActivityHub creates the hub and starts its broadcast loop.
func NewActivityHub() *ActivityHub {
	hub := &ActivityHub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan ActivityEvent, 100),
		done:      make(chan struct{}),
	}
	go hub.run()
	return hub
}

// run writes each event to every client in turn. Writes happen outside mu so
// a stalled subscriber never holds up Publish. A client whose write fails is
// dropped.
func (h *ActivityHub) run() {
	defer close(h.done)
	for ev := range h.broadcast {
		for _, conn := range h.snapshot() {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"event":    ev.Type,
					"conn_ptr": fmt.Sprintf("%p", conn),
				}).Info("Subscriber write failed, unregistering.")
				h.Unregister(conn)
			}
		}
	}
}

func (h *ActivityHub) snapshot() []*websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	return conns
}

// Register adds a subscriber.
func (h *ActivityHub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		conn.Close()
		return
	}
	h.clients[conn] = true
	logrus.WithField("subscribers", len(h.clients)).Debug("Activity feed subscriber registered.")
}

// Unregister removes and closes a subscriber; unknown connections are ignored.
func (h *ActivityHub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
		logrus.WithField("subscribers", len(h.clients)).Debug("Activity feed subscriber removed.")
	}
}

// Publish queues ev without blocking; a full buffer drops it.
func (h *ActivityHub) Publish(ev ActivityEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	select {
	case h.broadcast <- ev:
	default:
		logrus.WithField("event", ev.Type).Warn("Activity broadcast channel full, dropping message.")
	}
}

// Subscribers reports the number of connected clients.
func (h *ActivityHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close stops the broadcast loop after it drains and disconnects everyone.
func (h *ActivityHub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.broadcast)
	h.mu.Unlock()

	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

// HandleActivityWebSocket upgrades the request and keeps the subscriber
// registered until it disconnects. Client messages are ignored.
func (h *ActivityHub) HandleActivityWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection.")
		return
	}
	_ = conn.SetReadDeadline(time.Time{})
	h.Register(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Warn("Activity feed subscriber closed unexpectedly.")
			}
			break
		}
	}
	h.Unregister(conn)
}
