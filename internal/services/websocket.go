package services

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ridebid/ridebid-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents a WebSocket client subscribed to one ride's events
type Client struct {
	RideID string
	Role   string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
}

// Hub maintains the set of active clients and fans ride events out to the
// parties watching each ride. It is the push-based substitute for polling
// ride state and implements the dispatch core's Notifier interface.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client subscribed to ride %s (%s)", client.RideID, client.Role)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			log.Printf("Client unsubscribed from ride %s", client.RideID)
		}
	}
}

// WebSocketMessage is the envelope for every pushed event
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// RideEvent is the payload pushed on every ride lifecycle change
type RideEvent struct {
	RideID        string  `json:"rideId"`
	Status        string  `json:"status"`
	AcceptedBidID *string `json:"acceptedBidId,omitempty"`
	BidCount      int     `json:"bidCount"`
}

// RideUpdated implements dispatch.Notifier: it pushes the event to every
// websocket subscriber of the ride and mirrors it on Redis pub/sub.
func (h *Hub) RideUpdated(ride models.Ride, event string) {
	message := WebSocketMessage{
		Type: event,
		Data: RideEvent{
			RideID:        ride.ID,
			Status:        ride.Status,
			AcceptedBidID: ride.AcceptedBidID,
			BidCount:      len(ride.Bids),
		},
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling ride event: %v", err)
		return
	}

	h.BroadcastToRide(ride.ID, data)

	if err := PublishRideUpdate(context.Background(), ride.ID, ride.Status, event); err != nil {
		log.Printf("Redis publish failed for ride %s: %v", ride.ID, err)
	}
}

// BroadcastToRide sends a message to every client watching a ride
func (h *Hub) BroadcastToRide(rideID string, message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if client.RideID == rideID {
			select {
			case client.Send <- message:
			default:
				log.Printf("Warning: could not push to ride %s watcher (channel full)", rideID)
			}
		}
	}
}

// ConnectedClients returns the number of connected clients
func (h *Hub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the connection and registers the subscriber
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, rideID, role string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		RideID: rideID,
		Role:   role,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Hub:    hub,
	}

	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection until the peer goes away; subscribers are
// not expected to send anything.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
