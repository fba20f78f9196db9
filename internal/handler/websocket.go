package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"pollchat/internal/model"
)

const broadcastBuffer = 100

// Hub fans change events out to every connected WebSocket client
type Hub struct {
	log       *slog.Logger
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientMu  sync.RWMutex
	broadcast chan model.ChangeEvent
}

// NewHub creates a hub accepting connections from allowedOrigins
func NewHub(log *slog.Logger, allowedOrigins []string) *Hub {
	return &Hub{
		log:       log,
		upgrader:  createUpgrader(allowedOrigins),
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan model.ChangeEvent, broadcastBuffer),
	}
}

// createUpgrader creates a WebSocket upgrader with the given allowed origins
func createUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowedMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		allowedMap[origin] = true
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowedMap[origin]
		},
	}
}

// Publish queues an event for broadcast. A full queue drops the event
// instead of blocking the request that produced it.
func (h *Hub) Publish(event model.ChangeEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.log.Warn("[WebSocket] broadcast queue full, dropping event", "type", event.Type, "id", event.ID)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.clientMu.RLock()
	defer h.clientMu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket handles GET /ws
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("[WebSocket] upgrade error", "error", err)
		return
	}
	defer conn.Close()

	h.clientMu.Lock()
	h.clients[conn] = true
	totalClients := len(h.clients)
	h.clientMu.Unlock()

	h.log.Info("[WebSocket] New connection", "clients", totalClients)

	// クライアントからのメッセージを受信（キープアライブ用）
	for {
		var msg any
		if err := conn.ReadJSON(&msg); err != nil {
			h.remove(conn)
			h.log.Info("[WebSocket] Client disconnected", "clients", h.ClientCount())
			return
		}
	}
}

// Run broadcasts queued events until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case event := <-h.broadcast:
			h.send(event)
		}
	}
}

func (h *Hub) send(event model.ChangeEvent) {
	// スナップショットを取ってからロックを外し、書き込み中の map 変更を避ける
	h.clientMu.RLock()
	clientsSnapshot := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clientsSnapshot = append(clientsSnapshot, client)
	}
	h.clientMu.RUnlock()

	for _, client := range clientsSnapshot {
		if err := client.WriteJSON(event); err != nil {
			client.Close()
			h.remove(client)
		}
	}
	h.log.Debug("[WebSocket] 📢 Broadcast event", "type", event.Type, "id", event.ID, "clients", len(clientsSnapshot))
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.clientMu.Lock()
	delete(h.clients, conn)
	h.clientMu.Unlock()
}

func (h *Hub) closeAll() {
	h.clientMu.Lock()
	defer h.clientMu.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}
