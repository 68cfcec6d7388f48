package status

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
)

// Upgrader is shared by the websocket endpoints. Origin checks are left to
// the CORS middleware in front of the router.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type connection struct {
	sessionID string
	conn      *websocket.Conn
	send      chan []byte
}

// Hub tracks websocket watchers per wizard session.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*connection]struct{}
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		sessions: make(map[string]map[*connection]struct{}),
		logger:   logger,
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.sessions[c.sessionID]
	if !ok {
		conns = make(map[*connection]struct{})
		h.sessions[c.sessionID] = conns
	}
	conns[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.sessions[c.sessionID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.sessions, c.sessionID)
	}
}

// Watchers returns the number of live connections for a session.
func (h *Hub) Watchers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Publish implements Publisher. Slow watchers miss events rather than block
// the wizard.
func (h *Hub) Publish(sessionID string, ev Event) {
	ev.SessionID = sessionID
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Warn("status event marshal failed", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.sessions[sessionID] {
		select {
		case c.send <- data:
		default:
			h.logger.Debug("status watcher too slow, event dropped", zap.String("session_id", sessionID), zap.String("type", ev.Type))
		}
	}
}

// ServeWS registers conn as a watcher of sessionID and blocks until the
// client disconnects.
func (h *Hub) ServeWS(conn *websocket.Conn, sessionID string) {
	c := &connection{
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan []byte, 64),
	}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Watchers only listen; anything they send is discarded.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *connection) {
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
