// Package hub fans out seat, time and order events to connected admin
// consoles over websocket.
package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/pc-cafe/utils"
)

// Event types
const (
	EventSeatUpdate  = "seat_update"
	EventTimeUpdate  = "time_update"
	EventOrderCreate = "order_create"
	EventOrderUpdate = "order_update"
	EventMenuUpdate  = "menu_update"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// client owns one connection. Only its writer goroutine writes to conn.
type client struct {
	conn *websocket.Conn
	role string
	send chan []byte
}

func (c *client) writePump() {
	defer c.conn.Close()
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.InfoLogger.WithField("role", c.role).WithError(err).Warn("hub: write failed")
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Hub holds the connected clients keyed by connection.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func New() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// Register adds a connection and starts its writer.
func (h *Hub) Register(conn *websocket.Conn, role string) {
	c := &client{conn: conn, role: role, send: make(chan []byte, sendBuffer)}
	h.mutex.Lock()
	h.clients[conn] = c
	h.mutex.Unlock()
	go c.writePump()
}

// Unregister drops a connection; its writer closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(conn)
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast queues one event for every client without blocking. A client
// whose queue is full is dropped. Safe on a nil Hub.
func (h *Hub) Broadcast(event string, data interface{}) {
	if h == nil {
		return
	}

	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("hub: marshal message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			utils.InfoLogger.WithFields(logrus.Fields{
				"event": event,
				"role":  c.role,
			}).Warn("hub: dropping slow client")
			h.removeLocked(conn)
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		h.removeLocked(conn)
	}
}

func (h *Hub) removeLocked(conn *websocket.Conn) {
	if c, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(c.send)
	}
}
