// Package hub fans closed-round results out to websocket subscribers.
// It is a one-way broadcast: clients connect, receive round results as
// they close, and send nothing but pings.
package hub

import (
	"context"
	"fmt"
	"sync"

	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

// RoundResultMessage is the wire shape pushed to subscribers when a
// round closes
type RoundResultMessage struct {
	Type     string           `json:"type"` // always "round_result"
	RoundID  string           `json:"round_id"`
	Outcomes []models.Outcome `json:"outcomes"`
}

// Hub maintains the set of active clients and broadcasts round results
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan RoundResultMessage
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan RoundResultMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case msg := <-h.broadcast:
			h.broadcastMessage(msg)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// BroadcastRoundResult queues a closed round for fan-out. Non-blocking:
// a full buffer drops the message rather than stalling the settlement
// path.
func (h *Hub) BroadcastRoundResult(roundID string, outcomes []models.Outcome) {
	msg := RoundResultMessage{Type: "round_result", RoundID: roundID, Outcomes: outcomes}
	select {
	case h.broadcast <- msg:
	default:
		fmt.Println("broadcast buffer full, dropping round result")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true
	fmt.Printf("client %s connected (total: %d)\n", c.ID, len(h.clients))
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
		fmt.Printf("client %s disconnected (total: %d)\n", c.ID, len(h.clients))
	}
}

func (h *Hub) broadcastMessage(msg RoundResultMessage) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	for _, c := range clients {
		if !c.TrySend(msg) {
			fmt.Printf("client %s send buffer full, dropping message\n", c.ID)
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for c := range h.clients {
		close(c.Send)
		delete(h.clients, c)
	}
	fmt.Println("hub stopped")
}
