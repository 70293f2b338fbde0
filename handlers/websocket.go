package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"annah-server/middleware"
	"annah-server/models"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
)

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// Hub tracks the set of connected subscriber clients and fans messages out
// to all of them. Registration state is the only per-client state it holds.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
	}
}

// Register adds a client to the active set.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("[WS HUB] Client registered: %s (total clients: %d)", c.userID, count)
}

// Unregister removes a client and closes its send channel. Safe to call for
// a client that was never registered or is already gone.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		log.Printf("[WS HUB] Client unregistered: %s (total clients: %d)", c.userID, len(h.clients))
	}
	h.mu.Unlock()
}

// BroadcastAll sends a notification to every registered client. Clients whose
// send buffer is full are skipped; removal happens only when their connection
// closes, to avoid racing the connection's own lifecycle.
func (h *Hub) BroadcastAll(msg models.Notification) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WS HUB] BroadcastAll marshal error: %v", err)
		return
	}

	h.mu.RLock()
	totalClients := len(h.clients)
	sentCount := 0
	for client := range h.clients {
		select {
		case client.send <- data:
			sentCount++
		default:
			log.Printf("[WS HUB] Client %s buffer full - skipping", client.userID)
		}
	}
	h.mu.RUnlock()

	log.Printf("[WS HUB] Broadcast type '%s' sent to %d/%d clients", msg.Type, sentCount, totalClients)
}

// ClientCount reports the size of the active set.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token required", http.StatusUnauthorized)
		return
	}

	claims, err := middleware.ValidateToken(token)
	if err != nil {
		log.Printf("[WS] Connection rejected - invalid token from %s: %v", r.RemoteAddr, err)
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error for user %s: %v", claims.UserID, err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: claims.UserID,
	}

	// Welcome frame confirms the connection before any broadcast arrives
	welcomeMsg := []byte(`{"type":"welcome","message":"connected","showBrowserNotification":false}`)
	if err := conn.WriteMessage(websocket.TextMessage, welcomeMsg); err != nil {
		log.Printf("[WS] Failed to send welcome message to %s: %v", claims.UserID, err)
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.Register(client)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// This channel is server-to-client only; inbound frames just keep the
	// connection alive.
	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error for client %s: %v", c.userID, err)
			}
			break
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
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for client %s: %v", c.userID, err)
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
