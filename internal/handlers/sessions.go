package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createSessionRequest struct {
	Name string `json:"name"`
}

type audioRequest struct {
	Muted bool `json:"muted"`
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.caller(w, r, ""); !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Sessions.ListRooms(r.Context()))
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, "")
	if !ok {
		return
	}
	var req createSessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	room, err := h.svc.Sessions.CreateRoom(r.Context(), uid, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (h *Handler) JoinSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, "")
	if !ok {
		return
	}
	res, err := h.svc.Sessions.Join(r.Context(), chi.URLParam(r, "id"), uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) LeaveSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, "")
	if !ok {
		return
	}
	room, err := h.svc.Sessions.Leave(r.Context(), chi.URLParam(r, "id"), uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handler) ToggleSessionAudio(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, "")
	if !ok {
		return
	}
	var req audioRequest
	if !h.decode(w, r, &req) {
		return
	}
	room, err := h.svc.Sessions.ToggleAudio(r.Context(), chi.URLParam(r, "id"), uid, req.Muted)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}
