package handlers

import (
	"net/http"
	"strconv"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/AnshRaj112/mindhaven-backend/internal/assessment"
	"github.com/AnshRaj112/mindhaven-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

type moodRequest struct {
	UserID string `json:"userId"`
	Mood   int    `json:"mood"`
	Note   string `json:"note,omitempty"`
}

type scoreRequest struct {
	Responses      []int `json:"responses"`
	MaxPerQuestion int   `json:"maxPerQuestion,omitempty"`
}

type fitnessConnectRequest struct {
	Provider    string `json:"provider"`
	AccessToken string `json:"accessToken"`
}

type fitnessSyncRequest struct {
	Provider string `json:"provider"`
	Date     string `json:"date,omitempty"`
}

type subscribeRequest struct {
	Email string `json:"email"`
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation("limit", "limit must be a non-negative integer")
	}
	return n, nil
}

func (h *Handler) RecordMood(w http.ResponseWriter, r *http.Request) {
	var req moodRequest
	if !h.decode(w, r, &req) {
		return
	}
	uid, ok := h.caller(w, r, req.UserID)
	if !ok {
		return
	}
	entry, err := h.svc.Moods.Record(r.Context(), uid, req.Mood, req.Note)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) ListMoods(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, r.URL.Query().Get("userId"))
	if !ok {
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entries, err := h.svc.Moods.List(r.Context(), uid, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetQuestionnaire handles GET /api/assessment/questions. It is public.
func (h *Handler) GetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Questionnaire)
}

// ScoreAssessment is public and stateless. Without maxPerQuestion the
// responses are scored against the built-in questionnaire.
func (h *Handler) ScoreAssessment(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !h.decode(w, r, &req) {
		return
	}
	var (
		res assessment.Result
		err error
	)
	if req.MaxPerQuestion > 0 {
		res, err = assessment.Score(req.Responses, req.MaxPerQuestion)
	} else {
		res, err = assessment.ScoreQuestionnaire(h.svc.Questionnaire, req.Responses)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) ConnectFitness(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, "")
	if !ok {
		return
	}
	var req fitnessConnectRequest
	if !h.decode(w, r, &req) {
		return
	}
	u, err := h.svc.Fitness.Connect(r.Context(), uid, req.Provider, req.AccessToken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) DisconnectFitness(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, "")
	if !ok {
		return
	}
	u, err := h.svc.Fitness.Disconnect(r.Context(), uid, chi.URLParam(r, "provider"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) SyncFitness(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, "")
	if !ok {
		return
	}
	var req fitnessSyncRequest
	if !h.decode(w, r, &req) {
		return
	}
	snap, err := h.svc.Fitness.Sync(r.Context(), uid, req.Provider, req.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) ListFitness(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, r.URL.Query().Get("userId"))
	if !ok {
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	snaps, err := h.svc.Fitness.Recent(r.Context(), uid, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (h *Handler) SubscribeAffirmations(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, "")
	if !ok {
		return
	}
	var req subscribeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
			req.Email = claims.Email
		}
	}
	if err := h.svc.Affirmations.Subscribe(r.Context(), uid, req.Email); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeAck(w, "Subscribed to daily affirmations")
}

// ListResources handles GET /api/resources?category. It is public.
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	rs, err := h.svc.Resources.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}
