package websocket

import (
	"encoding/json"
	"log/slog"

	"teledrive-web/internal/event"
)

// Hub fans bus events out to connected clients. Delivery is scoped:
// an event tagged with a session only reaches that session's
// connections, so one user's drive activity is never pushed to
// another's browser.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	bus event.Bus
}

func NewHub(bus event.Bus) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		bus:        bus,
	}
}

func (h *Hub) Run() {
	events, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case e := <-events:
			message, err := json.Marshal(e)
			if err != nil {
				slog.Error("failed to marshal event", "error", err)
				continue
			}
			for client := range h.clients {
				if client.session != e.Session {
					continue
				}
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}
