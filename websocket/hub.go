package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// OccupancyUpdate is pushed to connected dashboards whenever a booking or
// release changes a lot's spot state.
type OccupancyUpdate struct {
	Type      string    `json:"type"`
	LotID     uint      `json:"lot_id"`
	Available int64     `json:"available"`
	Occupied  int64     `json:"occupied"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub fans occupancy updates out to all connected feed clients.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan *OccupancyUpdate
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new occupancy feed hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *OccupancyUpdate, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("Occupancy feed client connected (user %d)", client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("Occupancy feed client disconnected (user %d)", client.UserID)

		case update := <-h.broadcast:
			h.broadcastUpdate(update)
		}
	}
}

func (h *Hub) broadcastUpdate(update *OccupancyUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling occupancy update: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Slow consumer; drop it rather than block the hub
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// PublishOccupancy queues a lot occupancy update for broadcast. It never
// blocks the caller; updates are dropped when the feed backs up.
func (h *Hub) PublishOccupancy(lotID uint, available, occupied int64) {
	update := &OccupancyUpdate{
		Type:      "occupancy",
		LotID:     lotID,
		Available: available,
		Occupied:  occupied,
		Timestamp: time.Now().UTC(),
	}
	select {
	case h.broadcast <- update:
	default:
		log.Printf("Occupancy feed backlog full, dropping update for lot %d", lotID)
	}
}

// ClientCount returns the number of connected feed clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
