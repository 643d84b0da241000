package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsReadLimit  = 16 * 1024
	wsPongWait   = 90 * time.Second
	wsPingPeriod = 30 * time.Second
	wsWriteWait  = 10 * time.Second
)

func newSessionUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	anyOrigin := false
	for _, o := range allowedOrigins {
		o = normalizeOrigin(o)
		if o == "*" {
			anyOrigin = true
		}
		allowed[o] = struct{}{}
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// Browsers always send Origin; other clients may omit it and are
		// still held to the token check.
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || anyOrigin {
				return true
			}
			_, ok := allowed[normalizeOrigin(origin)]
			return ok
		},
	}
}

func normalizeOrigin(o string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
}

// sessionClientMessage is what the browser sends over the socket.
type sessionClientMessage struct {
	Type  string `json:"type"` // "message", "audio", "ping"
	Text  string `json:"text,omitempty"`
	Muted bool   `json:"muted,omitempty"`
}

type sessionErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SessionWebSocket streams events of one group session. The caller must
// have joined the room over REST first.
func (h *Handler) SessionWebSocket(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, "")
	if !ok {
		return
	}
	roomID := chi.URLParam(r, "id")
	room, err := h.svc.Sessions.GetRoom(roomID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	joined := false
	for _, p := range room.Participants {
		if p.UserID == uid {
			joined = true
			break
		}
	}
	if !joined {
		h.writeError(w, r, apperr.Forbidden("Join the session first"))
		return
	}

	events, unsubscribe, err := h.svc.Sessions.Subscribe(roomID, uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	log := h.log.With(zap.String("room_id", roomID), zap.String("user_id", uid))
	done := make(chan struct{})
	defer close(done)

	// Writer: the only goroutine that writes to conn.
	outgoing := make(chan any, 8)
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			var msg any
			select {
			case <-done:
				return
			case ev, ok := <-events:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
						time.Now().Add(wsWriteWait))
					conn.Close()
					return
				}
				msg = ev
			case m := <-outgoing:
				msg = m
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("session socket write failed", zap.Error(err))
				conn.Close()
				return
			}
		}
	}()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

		var msg sessionClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "message":
			err = h.svc.Sessions.Post(roomID, uid, msg.Text)
		case "audio":
			_, err = h.svc.Sessions.ToggleAudio(r.Context(), roomID, uid, msg.Muted)
		default:
			continue
		}
		if err != nil {
			e := apperr.As(err)
			select {
			case outgoing <- sessionErrorEvent{Type: "error", Message: e.PublicMessage()}:
			default:
			}
		}
	}
}
