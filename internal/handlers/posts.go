package handlers

import (
	"net/http"

	"github.com/AnshRaj112/mindhaven-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type likeRequest struct {
	UserID string `json:"userId"`
}

// ListPosts handles GET /api/posts. It is public.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.Posts.ListPosts(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req services.NewPost
	if !h.decode(w, r, &req) {
		return
	}
	uid, ok := h.caller(w, r, req.UserID)
	if !ok {
		return
	}
	req.UserID = uid
	post, err := h.svc.Posts.CreatePost(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	var req likeRequest
	if !h.decode(w, r, &req) {
		return
	}
	uid, ok := h.caller(w, r, req.UserID)
	if !ok {
		return
	}
	post, err := h.svc.Posts.ToggleLike(r.Context(), chi.URLParam(r, "id"), uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req services.NewComment
	if !h.decode(w, r, &req) {
		return
	}
	uid, ok := h.caller(w, r, req.UserID)
	if !ok {
		return
	}
	req.UserID = uid
	post, err := h.svc.Posts.AddComment(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}
