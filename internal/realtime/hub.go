package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub tracks live connections and the rooms they joined. Delivery is
// fire-and-forget: at most once per currently connected subscriber, no
// queuing for offline subscribers (SMS covers those).
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
	}
}

// Run processes connection lifecycle events. Call it once, in its own
// goroutine.
func (h *Hub) Run() {
	log.Printf("realtime hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("client connected: user %s (%s), %d total", client.userID, client.role, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("client disconnected: user %s, %d total", client.userID, total)
		}
	}
}

// Publish sends an event to every connection currently in the room. A room
// with no subscribers is not an error.
func (h *Hub) Publish(room RoomKey, event string, payload any) {
	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		log.Printf("Error: marshal %s event for room %v: %v", event, room, err)
		return
	}

	var stale []*Client
	sent := 0
	h.mu.RLock()
	for client := range h.clients {
		if !client.inRoom(room) {
			continue
		}
		select {
		case client.send <- data:
			sent++
		default:
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	if len(stale) > 0 {
		h.mu.Lock()
		for _, client := range stale {
			if _, ok := h.clients[client]; ok {
				close(client.send)
				delete(h.clients, client)
				log.Printf("Warning: dropped stale client %s (send buffer full)", client.userID)
			}
		}
		h.mu.Unlock()
	}

	log.Printf("published %q to room %s/%s: %d subscriber(s)", event, room.Role, room.UserID, sent)
}

// RoomSize reports how many connections are currently in a room.
func (h *Hub) RoomSize(room RoomKey) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for client := range h.clients {
		if client.inRoom(room) {
			n++
		}
	}
	return n
}
