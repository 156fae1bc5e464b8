// Package live pushes audit events to connected dashboard clients over
// websockets.
package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/hotel-ops/utils"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many messages a client may lag behind before it is
	// disconnected.
	sendBuffer = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
	// AdminOnly messages skip clients that did not connect as admin.
	AdminOnly bool `json:"-"`
}

type client struct {
	conn     *websocket.Conn
	username string
	admin    bool
	send     chan []byte
}

// Hub holds every connected client and fans messages out to them. Each
// client has its own writer goroutine, so a slow client never holds up
// Broadcast.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex

	onChange func(clients int)
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// OnClientsChanged registers fn to be called with the client count after
// every register or unregister.
func (h *Hub) OnClientsChanged(fn func(clients int)) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.onChange = fn
}

// Register adds conn to the hub. admin clients also receive AdminOnly
// messages.
func (h *Hub) Register(conn *websocket.Conn, username string, admin bool) {
	c := &client{
		conn:     conn,
		username: username,
		admin:    admin,
		send:     make(chan []byte, sendBuffer),
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = c
	go h.writePump(c)
	h.notify()
	utils.InfoLogger.Printf("Live client connected: %s (%d total)", username, len(h.clients))
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.remove(conn)
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast queues msg for every eligible client. A client whose queue is
// full is disconnected.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling live message %s: %v", msg.Event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, c := range h.clients {
		if msg.AdminOnly && !c.admin {
			continue
		}
		select {
		case c.send <- data:
		default:
			utils.ErrorLogger.Errorf("Live client %s is too slow, dropping it", c.username)
			h.remove(conn)
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn := range h.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		h.remove(conn)
	}
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Errorf("Error sending live message to %s: %v", c.username, err)
			h.Unregister(c.conn)
			return
		}
	}
}

// remove expects h.mutex to be held.
func (h *Hub) remove(conn *websocket.Conn) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(c.send)
	conn.Close()
	h.notify()
	utils.InfoLogger.Printf("Live client disconnected: %s (%d total)", c.username, len(h.clients))
}

func (h *Hub) notify() {
	if h.onChange != nil {
		h.onChange(len(h.clients))
	}
}
