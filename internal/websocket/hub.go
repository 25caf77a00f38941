package websocket

import (
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Client is one websocket connection belonging to an authenticated user.
// A user may have several connections open (multiple tabs/devices).
type Client struct {
	ID     string
	UserID int
	Conn   *websocket.Conn
	Mu     sync.Mutex
}

func NewClient(userID int, conn *websocket.Conn) *Client {
	return &Client{ID: uuid.NewString(), UserID: userID, Conn: conn}
}

// Event is a message fanned out to every connection of one user.
type Event struct {
	UserID  int
	Payload []byte
}

// Hub tracks connections per user and delivers board events to the owner's
// open connections only.
type Hub struct {
	Clients    map[*Client]bool
	Events     chan Event
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Events:     make(chan Event, 16),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run manages register, unregister and event delivery. It must run on its
// own goroutine for the hub's lifetime.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				client.Conn.Close()
			}
		case event := <-h.Events:
			for client := range h.Clients {
				if client.UserID != event.UserID {
					continue
				}
				client.Mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, event.Payload)
				client.Mu.Unlock()
				if err != nil {
					delete(h.Clients, client)
					client.Conn.Close()
				}
			}
		}
	}
}

// Notify delivers payload to every open connection of the user. It never
// blocks request handling when the hub is not running.
func (h *Hub) Notify(userID int, payload []byte) {
	select {
	case h.Events <- Event{UserID: userID, Payload: payload}:
	default:
	}
}
