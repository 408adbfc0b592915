package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Baafi-Marcus/qstakebet-sub001/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The edge layer terminates origin checks
		return true
	},
}

// WSHandler upgrades connections and attaches them to the round hub
type WSHandler struct {
	hub *hub.Hub
	ctx context.Context
}

// NewWSHandler creates a websocket handler bound to the service lifetime
func NewWSHandler(h *hub.Hub, ctx context.Context) *WSHandler {
	return &WSHandler{hub: h, ctx: ctx}
}

// HandleWebSocket upgrades HTTP connections to WebSocket
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		fmt.Printf("websocket upgrade error: %v\n", err)
		return
	}

	c := hub.NewClient(uuid.New().String(), conn, h.hub)
	h.hub.Register(c)

	// Service context, not request context: the pumps outlive the
	// upgrade request
	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)
}
