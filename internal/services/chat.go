package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/responder"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"go.uber.org/zap"
)

// Greeting is the system message every new conversation starts with.
const Greeting = "Hi, I'm here to listen. How are you feeling today?"

// Reply is what the user sees after sending a message.
type Reply struct {
	ReplyText string `json:"replyText"`
	Emotion   string `json:"emotion,omitempty"`
}

type ChatService struct {
	store   store.ChatStore
	backend responder.Backend
	cache   HistoryCache
	log     *zap.Logger
	now     func() time.Time
}

func NewChatService(s store.ChatStore, backend responder.Backend, cache HistoryCache, log *zap.Logger) *ChatService {
	if cache == nil {
		cache = NopHistoryCache{}
	}
	return &ChatService{
		store:   s,
		backend: backend,
		cache:   cache,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Initialize returns the user's messages, seeding the greeting on first use.
func (s *ChatService) Initialize(ctx context.Context, userID string) ([]models.Message, error) {
	if userID == "" {
		return nil, apperr.Auth("Authentication required")
	}
	seed := models.Message{Text: Greeting, Sender: models.SenderSystem, Timestamp: s.now()}
	chat, err := s.store.EnsureChat(ctx, userID, seed)
	if err != nil {
		return nil, s.storeErr("initialize chat", userID, err)
	}
	return nonNil(chat.Messages), nil
}

// SendMessage asks the response backend first and persists nothing on
// failure. On success the user turn and the bot turn are appended together.
func (s *ChatService) SendMessage(ctx context.Context, userID, text string) (Reply, error) {
	if userID == "" {
		return Reply{}, apperr.Auth("Authentication required")
	}
	if strings.TrimSpace(text) == "" {
		return Reply{}, apperr.Validation("message", "Message is required")
	}

	res := s.backend.Respond(ctx, text)
	if !res.OK {
		s.log.Warn("response backend failed",
			zap.String("user_id", userID),
			zap.String("kind", string(res.Kind)),
			zap.Error(res.Err))
		return Reply{}, apperr.Upstream("response backend failed", res.Err)
	}

	now := s.now()
	userTurn := models.Message{Text: text, Sender: models.SenderUser, Timestamp: now}
	botTurn := models.Message{Text: res.ReplyText, Sender: models.SenderBot, Timestamp: now, Emotion: res.Emotion}

	if _, err := s.store.AppendMessages(ctx, userID, userTurn, botTurn); err != nil {
		return Reply{}, s.storeErr("append chat turns", userID, err)
	}
	s.cache.Invalidate(ctx, userID)

	return Reply{ReplyText: res.ReplyText, Emotion: res.Emotion}, nil
}

// SaveMessage appends one client-produced message.
func (s *ChatService) SaveMessage(ctx context.Context, userID string, msg models.Message) error {
	if userID == "" {
		return apperr.Auth("Authentication required")
	}
	if strings.TrimSpace(msg.Text) == "" {
		return apperr.Validation("message", "Message is required")
	}
	if msg.Sender == "" {
		msg.Sender = models.SenderUser
	}
	if !msg.Sender.Valid() || msg.Sender == models.SenderSystem {
		return apperr.Validation("sender", "Sender must be user or bot")
	}
	msg.Timestamp = s.now()

	if _, err := s.store.AppendMessages(ctx, userID, msg); err != nil {
		return s.storeErr("save chat message", userID, err)
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

// GetHistory returns every message in order, or an empty list.
func (s *ChatService) GetHistory(ctx context.Context, userID string) ([]models.Message, error) {
	if userID == "" {
		return nil, apperr.Auth("Authentication required")
	}
	msgs, gen, ok := s.cache.Get(ctx, userID)
	if ok {
		return nonNil(msgs), nil
	}

	chat, err := s.store.GetChat(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return []models.Message{}, nil
	}
	if err != nil {
		return nil, s.storeErr("load chat history", userID, err)
	}
	s.cache.Set(ctx, userID, gen, chat.Messages)
	return nonNil(chat.Messages), nil
}

// DeleteHistory removes the conversation. Deleting a missing one succeeds.
func (s *ChatService) DeleteHistory(ctx context.Context, userID string) error {
	if userID == "" {
		return apperr.Auth("Authentication required")
	}
	if err := s.store.DeleteChat(ctx, userID); err != nil {
		return s.storeErr("delete chat history", userID, err)
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

func (s *ChatService) storeErr(op, userID string, err error) error {
	s.log.Error("chat store failure", zap.String("op", op), zap.String("user_id", userID), zap.Error(err))
	return apperr.Store(op, err)
}

func nonNil(msgs []models.Message) []models.Message {
	if msgs == nil {
		return []models.Message{}
	}
	return msgs
}
