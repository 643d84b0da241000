package handlers

import (
	"net/http"

	"github.com/AnshRaj112/mindhaven-backend/internal/middleware"
	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

// Login handles POST /api/users/login. The firebaseUid in the body, when
// present, must be the token subject.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	uid, ok := h.caller(w, r, req.FirebaseUID)
	if !ok {
		return
	}
	req.FirebaseUID = uid
	if req.Email == "" {
		if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
			req.Email = claims.Email
		}
	}
	u, err := h.svc.Users.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	u, err := h.svc.Users.GetUser(r.Context(), uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var patch models.PreferencesPatch
	if !h.decode(w, r, &patch) {
		return
	}
	u, err := h.svc.Users.UpdatePreferences(r.Context(), uid, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.svc.Users.DeleteAccount(r.Context(), uid); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeAck(w, "Account deleted")
}
