package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"personality-quiz-system/internal/models"
)

// Message is the standard format pushed over the result feed.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins. Adjust this in production!
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// AuthorizeFunc decides whether the presented token may watch the quiz's
// result feed, returning the authenticated user id. Wired in main so the hub
// stays free of auth and quiz service imports.
type AuthorizeFunc func(quizID, token string) (string, error)

// Hub fans recorded results out to connected owner dashboards, one room per
// quiz.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	authorize  AuthorizeFunc
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) SetAuthorizer(fn AuthorizeFunc) {
	h.authorize = fn
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	quizID string
	userID string
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.quizID] == nil {
				h.rooms[client.quizID] = make(map[*Client]bool)
			}
			h.rooms[client.quizID][client] = true
			h.mu.Unlock()
			log.Printf("User %s watching results for quiz %s", client.userID, client.quizID)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.quizID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.quizID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastResult pushes a result_recorded event to every client watching the
// quiz. Slow clients are dropped rather than blocking the broadcast.
func (h *Hub) BroadcastResult(quizID string, result *models.QuizResult) {
	payload, err := json.Marshal(Message{Type: "result_recorded", Data: result})
	if err != nil {
		log.Printf("Error marshaling result event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[quizID] {
		select {
		case client.send <- payload:
		default:
			log.Printf("Dropping slow result feed client for quiz %s", quizID)
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

// HandleResultFeed upgrades the connection and subscribes it to the quiz's
// result feed. The JWT arrives as a query parameter because browsers cannot
// set headers on websocket dials.
func (h *Hub) HandleResultFeed(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizID"]
	token := r.URL.Query().Get("token")

	if h.authorize == nil {
		http.Error(w, "Feed not available", http.StatusServiceUnavailable)
		return
	}
	userID, err := h.authorize(quizID, token)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading result feed connection: %v", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 16),
		quizID: quizID,
		userID: userID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump discards inbound frames; the feed is one-way. It exists to notice
// closes and answer pings.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Result feed closed unexpectedly: %v", err)
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
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
