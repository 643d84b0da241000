// Package handlers adapts HTTP requests to the service layer. Handlers decode
// JSON, enforce that any userId in the request belongs to the caller, and
// translate service errors into {success, message} responses.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/AnshRaj112/mindhaven-backend/internal/assessment"
	"github.com/AnshRaj112/mindhaven-backend/internal/middleware"
	"github.com/AnshRaj112/mindhaven-backend/internal/services"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Services groups what the handlers depend on. Uploader may be nil when
// uploads are not configured.
type Services struct {
	Chat          *services.ChatService
	Posts         *services.PostService
	Schedule      *services.ScheduleService
	Users         *services.UserService
	Moods         *services.MoodService
	Fitness       *services.FitnessService
	Sessions      *services.SessionRegistry
	Affirmations  *services.AffirmationService
	Resources     *services.ResourceService
	Uploader      services.Uploader
	Questionnaire assessment.Questionnaire
}

type Handler struct {
	svc      Services
	upgrader *websocket.Upgrader
	log      *zap.Logger
}

// New builds the handlers. allowedOrigins are the browser origins that may
// open session WebSockets, the same list CORS uses.
func New(svc Services, allowedOrigins []string, log *zap.Logger) *Handler {
	if len(svc.Questionnaire.Questions) == 0 {
		svc.Questionnaire = assessment.Default
	}
	return &Handler{svc: svc, upgrader: newSessionUpgrader(allowedOrigins), log: log}
}

type ackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAck(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, ackResponse{Success: true, Message: message})
}

// writeError maps err onto its HTTP status. Upstream and store causes are
// logged here and replaced by a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.As(err)
	status := e.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("kind", e.Kind.String()),
			zap.Error(e))
	}
	writeJSON(w, status, ackResponse{Success: false, Message: e.PublicMessage()})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "Invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "Request body is required"
		}
		h.writeError(w, r, apperr.Validation("body", msg))
		return false
	}
	return true
}

// caller returns the authenticated user id. When claimed is non-empty it
// must match, otherwise the request is rejected with 403.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request, claimed string) (string, bool) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Auth("Authentication required"))
		return "", false
	}
	if claimed != "" && claimed != uid {
		h.writeError(w, r, apperr.Forbidden("You can only access your own data"))
		return "", false
	}
	return uid, true
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeAck(w, "OK")
}
