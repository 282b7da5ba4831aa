package sse

import (
	"fmt"
	"log"
	"sync"
)

// Event is one Server-Sent Event on the status stream.
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client is one connected gate or dashboard screen.
type Client struct {
	ID       string
	Username string
	Events   chan Event
}

// Hub fans status events out to all connected clients. Gate and queue
// screens subscribe instead of polling the queue endpoints.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// GlobalHub is the process-wide hub instance.
var GlobalHub = NewHub()

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[SSE] Client registered: id=%s user=%s (total: %d)", client.ID, client.Username, len(h.clients))
}

// Unregister removes a client and closes its event channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		log.Printf("[SSE] Client unregistered: id=%s (total: %d)", clientID, len(h.clients))
	}
}

// Broadcast sends an event to every connected client. Slow clients are
// skipped rather than blocking the publisher.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			log.Printf("[SSE] Client %s buffer full, skipping event", client.ID)
		}
	}
}

// PublishStatusUpdate announces a check-in or check-out at a plant.
func PublishStatusUpdate(truckNo, plantName, action string) {
	data := fmt.Sprintf(`{"truck_no":"%s","plant_name":"%s","action":"%s"}`, truckNo, plantName, action)
	GlobalHub.Broadcast(Event{
		EventType: "status_update",
		Data:      data,
	})
}

// PublishItineraryUpdate announces a saved or completed itinerary.
func PublishItineraryUpdate(truckNo, action string) {
	data := fmt.Sprintf(`{"truck_no":"%s","action":"%s"}`, truckNo, action)
	GlobalHub.Broadcast(Event{
		EventType: "itinerary_update",
		Data:      data,
	})
}
