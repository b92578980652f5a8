package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/printing"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is a localhost agent endpoint; the UI shell connects from a
	// file:// or app:// origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Hub fans job lifecycle events out to connected UI clients over websocket.
// It satisfies printing.EventSink.
type Hub struct {
	log    *zap.Logger
	events chan printing.Event

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub(log *zap.Logger) *Hub {
	h := &Hub{
		log:     log,
		events:  make(chan printing.Event, 64),
		clients: make(map[*websocket.Conn]struct{}),
	}
	go h.writeLoop()
	return h
}

// Publish hands the event to the hub's writer goroutine. Dispatch must never
// wait on a slow UI socket, so a full queue drops the event rather than
// blocking the caller; the single writer keeps events in publish order.
func (h *Hub) Publish(ev printing.Event) {
	select {
	case h.events <- ev:
	default:
		h.log.Debug("event queue full, dropping", zap.String("type", ev.Type))
	}
}

func (h *Hub) writeLoop() {
	for ev := range h.events {
		h.mu.Lock()
		for conn := range h.clients {
			if err := conn.WriteJSON(ev); err != nil {
				h.log.Debug("event client dropped", zap.Error(err))
				conn.Close()
				delete(h.clients, conn)
			}
		}
		h.mu.Unlock()
	}
}

// Handle upgrades the request and parks the connection in the client set
// until the peer goes away.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// Read loop exists only to observe the close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()
}
