package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"pollchat/internal/config"
	"pollchat/internal/model"
)

// MessageService is the chat operation set served over HTTP
type MessageService interface {
	ListMessages(ctx context.Context) ([]model.Message, error)
	PostMessage(ctx context.Context, name, content string) error
	DeleteMessage(ctx context.Context, id string) error
}

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds application dependencies
type Handler struct {
	Log     *slog.Logger
	Service MessageService
	Health  Pinger
	Hub     *Hub
	Config  config.Config
}

// New creates a new Handler with the given dependencies
func New(log *slog.Logger, svc MessageService, health Pinger, hub *Hub, cfg config.Config) *Handler {
	return &Handler{
		Log:     log,
		Service: svc,
		Health:  health,
		Hub:     hub,
		Config:  cfg,
	}
}

// SetupRouter configures and returns the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()

	// REST API
	r.HandleFunc("/messages", h.GetMessages).Methods("GET")
	r.HandleFunc("/messages", h.CreateMessage).Methods("POST")
	r.HandleFunc("/messages", h.DeleteMessageByQuery).Methods("DELETE")
	r.HandleFunc("/messages/{id}", h.DeleteMessage).Methods("DELETE")

	r.HandleFunc("/healthz", h.Healthz).Methods("GET")

	// WebSocket
	if h.Hub != nil {
		r.HandleFunc("/ws", h.Hub.HandleWebSocket).Methods("GET")
	}

	return r
}

// Healthz handles GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil {
		if err := h.Health.Ping(r.Context()); err != nil {
			h.Log.Warn("[GET /healthz] store unreachable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
