// Package live fans complaint lifecycle events out to connected operator
// dashboards. Events arrive over Redis Pub/Sub (so every backend instance
// sees them regardless of which instance produced them) and are pushed to
// WebSocket clients.
package live

import (
	"encoding/json"
	"log"

	"jalrakshak/backend/internal/models"
	"jalrakshak/backend/internal/storage"
)

// Hub keeps the set of connected dashboard clients and broadcasts events
// to all of them. The feed is one-way: clients only listen.
type Hub struct {
	Clients map[*WebSocketClient]bool

	BroadcastCh  chan models.ComplaintEvent
	RegisterCh   chan *WebSocketClient
	UnregisterCh chan *WebSocketClient
}

// NewHub creates a hub with buffered channels so a slow dashboard cannot
// stall the pipeline goroutines publishing events.
func NewHub() *Hub {
	return &Hub{
		Clients:      make(map[*WebSocketClient]bool),
		BroadcastCh:  make(chan models.ComplaintEvent, 64),
		RegisterCh:   make(chan *WebSocketClient),
		UnregisterCh: make(chan *WebSocketClient),
	}
}

// Run is the hub's main dispatcher goroutine.
func (h *Hub) Run() {
	log.Println("Live feed hub started.")

	for {
		select {
		case client := <-h.RegisterCh:
			h.Clients[client] = true
			log.Printf("INFO: Dashboard client connected (%d active)", len(h.Clients))

		case client := <-h.UnregisterCh:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				client.Close()
				log.Printf("INFO: Dashboard client disconnected (%d active)", len(h.Clients))
			}

		case event := <-h.BroadcastCh:
			for client := range h.Clients {
				select {
				case client.Send <- event:
				default:
					// The client stopped draining its channel; drop it
					// rather than blocking every other dashboard.
					delete(h.Clients, client)
					client.Close()
				}
			}
		}
	}
}

// StartPubSubListener starts a goroutine that relays Redis Pub/Sub events
// into the hub's broadcast channel.
func (h *Hub) StartPubSubListener(s *storage.Service) {
	go func() {
		pubsub := s.SubscribeComplaintEvents()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var event models.ComplaintEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("ERROR: Failed to decode complaint event: %v", err)
				continue
			}
			h.BroadcastCh <- event
		}
	}()
}
