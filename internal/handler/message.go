package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"pollchat/internal/service"
)

// maxBodyBytes はリクエストボディの上限 (1MB)
const maxBodyBytes = 1 << 20

type postMessageRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// GetMessages handles GET /messages
// 新しい順に最大100件を返す
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	h.Log.Debug("[GET /messages] Request received", "remote", r.RemoteAddr)

	msgList, err := h.Service.ListMessages(r.Context())
	if err != nil {
		h.Log.Error("[GET /messages] ❌ Failed to fetch messages", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}

	h.Log.Debug("[GET /messages] ✅ Returned messages", "count", len(msgList))
	writeJSON(w, http.StatusOK, msgList)
}

// CreateMessage handles POST /messages
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	h.Log.Info("[POST /messages] Request received", "remote", r.RemoteAddr)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	// id / createdAt はクライアントから受け付けない
	var body postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.Log.Warn("[POST /messages] ❌ Bad Request", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Service.PostMessage(r.Context(), body.Name, body.Content); err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			h.Log.Warn("[POST /messages] ❌ Bad Request", "field", validationErr.Field)
			writeError(w, http.StatusBadRequest, validationErr.Message)
			return
		}
		h.Log.Error("[POST /messages] ❌ Failed to post message", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to post message")
		return
	}

	h.Log.Info("[POST /messages] ✅ Created message", "name", body.Name)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteMessage handles DELETE /messages/{id}
// 存在しないIDでも 200 を返す
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h.Log.Info("[DELETE /messages/{id}] Request received", "id", id, "remote", r.RemoteAddr)

	if err := h.Service.DeleteMessage(r.Context(), id); err != nil {
		h.deleteFailed(w, id, err)
		return
	}

	h.Log.Info("[DELETE /messages/{id}] ✅ Deleted", "id", id)
	w.WriteHeader(http.StatusOK)
}

// DeleteMessageByQuery handles DELETE /messages?id=...
func (h *Handler) DeleteMessageByQuery(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	h.Log.Info("[DELETE /messages?id] Request received", "id", id, "remote", r.RemoteAddr)

	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing ID parameter")
		return
	}

	if err := h.Service.DeleteMessage(r.Context(), id); err != nil {
		h.deleteFailed(w, id, err)
		return
	}

	h.Log.Info("[DELETE /messages?id] ✅ Deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) deleteFailed(w http.ResponseWriter, id string, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, validationErr.Message)
		return
	}
	h.Log.Error("[DELETE /messages] ❌ Failed to delete message", "id", id, "error", err)
	writeError(w, http.StatusInternalServerError, "Failed to delete message")
}
