package handlers

import (
	"net/http"

	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/go-chi/chi/v5"
)

type chatMessageRequest struct {
	Message string        `json:"message"`
	Sender  models.Sender `json:"sender,omitempty"`
}

// InitializeChat handles POST /api/chat/initialize/{userId}.
func (h *Handler) InitializeChat(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, chi.URLParam(r, "userId"))
	if !ok {
		return
	}
	msgs, err := h.svc.Chat.Initialize(r.Context(), uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// GetChatHistory handles GET /api/chat/{userId}.
func (h *Handler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, chi.URLParam(r, "userId"))
	if !ok {
		return
	}
	msgs, err := h.svc.Chat.GetHistory(r.Context(), uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// SendChatMessage handles POST /api/chat/{userId}.
func (h *Handler) SendChatMessage(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, chi.URLParam(r, "userId"))
	if !ok {
		return
	}
	var req chatMessageRequest
	if !h.decode(w, r, &req) {
		return
	}
	reply, err := h.svc.Chat.SendMessage(r.Context(), uid, req.Message)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// SaveChatMessage handles POST /api/chat/save/{userId}.
func (h *Handler) SaveChatMessage(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, chi.URLParam(r, "userId"))
	if !ok {
		return
	}
	var req chatMessageRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.Chat.SaveMessage(r.Context(), uid, models.Message{Text: req.Message, Sender: req.Sender}); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeAck(w, "Message saved")
}

// DeleteChatHistory handles DELETE /api/chat/{userId}.
func (h *Handler) DeleteChatHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, chi.URLParam(r, "userId"))
	if !ok {
		return
	}
	if err := h.svc.Chat.DeleteHistory(r.Context(), uid); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeAck(w, "Chat history deleted")
}
