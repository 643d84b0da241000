package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/AnshRaj112/mindhaven-backend/internal/integrations/media"
	"github.com/AnshRaj112/mindhaven-backend/internal/metrics"
	"github.com/AnshRaj112/mindhaven-backend/internal/moderation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session event types pushed to subscribers.
const (
	EventParticipantJoined = "participant_joined"
	EventParticipantLeft   = "participant_left"
	EventAudioToggled      = "audio_toggled"
	EventMessage           = "message"
)

const (
	subscriberBuffer  = 32
	maxRoomNameLength = 80
	maxSessionMessage = 1000

	// Rooms nobody is in or watching are dropped after this long.
	emptyRoomGrace = 5 * time.Minute
)

// SessionEvent is the payload written to WebSocket subscribers.
type SessionEvent struct {
	Type      string    `json:"type"`
	RoomID    string    `json:"roomId"`
	UserID    string    `json:"userId,omitempty"`
	Muted     bool      `json:"muted,omitempty"`
	Text      string    `json:"text,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Participant struct {
	UserID   string    `json:"userId"`
	Muted    bool      `json:"muted"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Room is a snapshot of a group session.
type Room struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	CreatedBy    string        `json:"createdBy"`
	CreatedAt    time.Time     `json:"createdAt"`
	Participants []Participant `json:"participants"`
}

// JoinResult carries the media token the client hands to the media SDK.
type JoinResult struct {
	Room       Room   `json:"room"`
	MediaToken string `json:"mediaToken,omitempty"`
}

type room struct {
	id           string
	name         string
	createdBy    string
	createdAt    time.Time
	participants map[string]*Participant
	subs         map[*subscriber]struct{}
	idleSince    time.Time
}

func (rm *room) idle() bool {
	return len(rm.participants) == 0 && len(rm.subs) == 0
}

type subscriber struct {
	userID string
	ch     chan SessionEvent
}

// SessionRegistry tracks live group sessions and fans events out to local
// subscribers. State is in-process and lost on restart.
type SessionRegistry struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	closed bool

	media media.Provider
	log   *zap.Logger
	now   func() time.Time
}

func NewSessionRegistry(provider media.Provider, log *zap.Logger) *SessionRegistry {
	if provider == nil {
		provider = media.Nop{}
	}
	return &SessionRegistry{
		rooms: make(map[string]*room),
		media: provider,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *SessionRegistry) CreateRoom(ctx context.Context, userID, name string) (Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Room{}, apperr.Validation("name", "Session name is required")
	}
	if len(name) > maxRoomNameLength {
		return Room{}, apperr.Validation("name", "Session name is too long")
	}

	id := uuid.NewString()
	if err := r.media.CreateRoom(ctx, id); err != nil {
		return Room{}, r.upstreamErr("create room", id, userID, err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return Room{}, apperr.Upstream("session registry closed", nil)
	}
	expired := r.reapLocked()
	now := r.now()
	rm := &room{
		id:           id,
		name:         name,
		createdBy:    userID,
		createdAt:    now,
		participants: make(map[string]*Participant),
		subs:         make(map[*subscriber]struct{}),
		idleSince:    now,
	}
	r.rooms[id] = rm
	metrics.SetActiveSessions(len(r.rooms))
	snap := rm.snapshot()
	r.mu.Unlock()

	r.log.Info("session created", zap.String("room_id", id), zap.String("user_id", userID))
	r.closeMedia(ctx, expired)
	return snap, nil
}

// ListRooms returns every open room, oldest first.
func (r *SessionRegistry) ListRooms(ctx context.Context) []Room {
	r.mu.Lock()
	expired := r.reapLocked()
	out := make([]Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, rm.snapshot())
	}
	r.mu.Unlock()

	r.closeMedia(ctx, expired)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *SessionRegistry) GetRoom(roomID string) (Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return Room{}, apperr.NotFound("Session not found")
	}
	return rm.snapshot(), nil
}

// Join adds userID to the room. Joining twice is a no-op apart from issuing
// a fresh media token.
func (r *SessionRegistry) Join(ctx context.Context, roomID, userID string) (JoinResult, error) {
	if _, err := r.GetRoom(roomID); err != nil {
		return JoinResult{}, err
	}
	token, err := r.media.Join(ctx, roomID, userID)
	if err != nil {
		return JoinResult{}, r.upstreamErr("join room", roomID, userID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return JoinResult{}, apperr.NotFound("Session not found")
	}
	if _, already := rm.participants[userID]; !already {
		rm.participants[userID] = &Participant{UserID: userID, JoinedAt: r.now()}
		r.broadcastLocked(rm, SessionEvent{Type: EventParticipantJoined, UserID: userID})
	}
	return JoinResult{Room: rm.snapshot(), MediaToken: token}, nil
}

// Leave removes userID from the room. Leaving a room you are not in succeeds.
// When the last participant leaves and nobody is subscribed, the room ends.
func (r *SessionRegistry) Leave(ctx context.Context, roomID, userID string) (Room, error) {
	r.mu.RLock()
	rm, ok := r.rooms[roomID]
	var present bool
	if ok {
		_, present = rm.participants[userID]
	}
	r.mu.RUnlock()
	if !ok {
		return Room{}, apperr.NotFound("Session not found")
	}
	if present {
		if err := r.media.Leave(ctx, roomID, userID); err != nil {
			r.log.Warn("media leave failed", zap.String("room_id", roomID), zap.String("user_id", userID), zap.Error(err))
		}
	}

	r.mu.Lock()
	rm, ok = r.rooms[roomID]
	if !ok {
		r.mu.Unlock()
		return Room{}, apperr.NotFound("Session not found")
	}
	dropped := false
	if _, present := rm.participants[userID]; present {
		delete(rm.participants, userID)
		r.broadcastLocked(rm, SessionEvent{Type: EventParticipantLeft, UserID: userID})
		if rm.idle() {
			delete(r.rooms, roomID)
			metrics.SetActiveSessions(len(r.rooms))
			dropped = true
		}
	}
	snap := rm.snapshot()
	r.mu.Unlock()

	if dropped {
		r.log.Info("session ended", zap.String("room_id", roomID))
		r.closeMedia(ctx, []string{roomID})
	}
	return snap, nil
}

func (r *SessionRegistry) ToggleAudio(ctx context.Context, roomID, userID string, muted bool) (Room, error) {
	if err := r.requireParticipant(roomID, userID); err != nil {
		return Room{}, err
	}
	if err := r.media.ToggleAudio(ctx, roomID, userID, muted); err != nil {
		return Room{}, r.upstreamErr("toggle audio", roomID, userID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return Room{}, apperr.NotFound("Session not found")
	}
	p, ok := rm.participants[userID]
	if !ok {
		return Room{}, apperr.Forbidden("Join the session first")
	}
	if p.Muted != muted {
		p.Muted = muted
		r.broadcastLocked(rm, SessionEvent{Type: EventAudioToggled, UserID: userID, Muted: muted})
	}
	return rm.snapshot(), nil
}

// Post relays an ephemeral text message to everyone in the room.
func (r *SessionRegistry) Post(roomID, userID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return apperr.Validation("text", "Message is required")
	}
	if len(text) > maxSessionMessage {
		return apperr.Validation("text", "Message is too long")
	}
	if moderation.Check(text).Threat {
		return apperr.Validation("text", "Your message contains threatening language")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return apperr.NotFound("Session not found")
	}
	if _, ok := rm.participants[userID]; !ok {
		return apperr.Forbidden("Join the session first")
	}
	r.broadcastLocked(rm, SessionEvent{Type: EventMessage, UserID: userID, Text: text})
	return nil
}

// Subscribe returns a channel of room events and a cancel func. The channel
// is closed by cancel, or when the registry shuts down. Slow subscribers
// drop events rather than block the room.
func (r *SessionRegistry) Subscribe(roomID, userID string) (<-chan SessionEvent, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, nil, apperr.NotFound("Session not found")
	}
	rm, ok := r.rooms[roomID]
	if !ok {
		return nil, nil, apperr.NotFound("Session not found")
	}

	sub := &subscriber{userID: userID, ch: make(chan SessionEvent, subscriberBuffer)}
	rm.subs[sub] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if cur, ok := r.rooms[roomID]; ok {
				if _, ok := cur.subs[sub]; ok {
					delete(cur.subs, sub)
					close(sub.ch)
					if cur.idle() {
						cur.idleSince = r.now()
					}
				}
			}
		})
	}
	return sub.ch, cancel, nil
}

// Close drops every room and closes all subscriber channels.
func (r *SessionRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for id, rm := range r.rooms {
		for sub := range rm.subs {
			close(sub.ch)
		}
		delete(r.rooms, id)
	}
	metrics.SetActiveSessions(0)
}

// reapLocked drops rooms that have been idle for emptyRoomGrace and returns
// their ids.
func (r *SessionRegistry) reapLocked() []string {
	var expired []string
	now := r.now()
	for id, rm := range r.rooms {
		if rm.idle() && now.Sub(rm.idleSince) >= emptyRoomGrace {
			delete(r.rooms, id)
			expired = append(expired, id)
		}
	}
	if len(expired) > 0 {
		metrics.SetActiveSessions(len(r.rooms))
		r.log.Info("idle sessions dropped", zap.Int("count", len(expired)))
	}
	return expired
}

// closeMedia releases the provider side of ended rooms. Failures are logged
// only.
func (r *SessionRegistry) closeMedia(ctx context.Context, roomIDs []string) {
	for _, id := range roomIDs {
		if err := r.media.CloseRoom(ctx, id); err != nil {
			metrics.RecordUpstreamError("media")
			r.log.Warn("media close room failed", zap.String("room_id", id), zap.Error(err))
		}
	}
}

func (r *SessionRegistry) requireParticipant(roomID, userID string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return apperr.NotFound("Session not found")
	}
	if _, ok := rm.participants[userID]; !ok {
		return apperr.Forbidden("Join the session first")
	}
	return nil
}

func (r *SessionRegistry) broadcastLocked(rm *room, ev SessionEvent) {
	ev.RoomID = rm.id
	ev.Timestamp = r.now()
	for sub := range rm.subs {
		select {
		case sub.ch <- ev:
		default:
			r.log.Warn("session subscriber lagging, event dropped",
				zap.String("room_id", rm.id),
				zap.String("user_id", sub.userID),
				zap.String("event", ev.Type))
		}
	}
}

func (r *SessionRegistry) upstreamErr(op, roomID, userID string, err error) error {
	metrics.RecordUpstreamError("media")
	r.log.Warn("media provider failure", zap.String("op", op), zap.String("room_id", roomID), zap.String("user_id", userID), zap.Error(err))
	return apperr.Upstream(op, err)
}

func (rm *room) snapshot() Room {
	ps := make([]Participant, 0, len(rm.participants))
	for _, p := range rm.participants {
		ps = append(ps, *p)
	}
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].JoinedAt.Equal(ps[j].JoinedAt) {
			return ps[i].UserID < ps[j].UserID
		}
		return ps[i].JoinedAt.Before(ps[j].JoinedAt)
	})
	return Room{
		ID:           rm.id,
		Name:         rm.name,
		CreatedBy:    rm.createdBy,
		CreatedAt:    rm.createdAt,
		Participants: ps,
	}
}
