package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"go.uber.org/zap"
)

const (
	DefaultMoodLimit = 30
	MaxMoodLimit     = 365
	maxMoodNote      = 500
)

type MoodService struct {
	store store.MoodStore
	log   *zap.Logger
	now   func() time.Time
}

func NewMoodService(s store.MoodStore, log *zap.Logger) *MoodService {
	return &MoodService{store: s, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Record appends a rating between MinMood and MaxMood.
func (s *MoodService) Record(ctx context.Context, userID string, mood int, note string) (models.MoodEntry, error) {
	if userID == "" {
		return models.MoodEntry{}, apperr.Auth("Authentication required")
	}
	if mood < models.MinMood || mood > models.MaxMood {
		return models.MoodEntry{}, apperr.Validation("mood",
			fmt.Sprintf("Mood must be between %d and %d", models.MinMood, models.MaxMood))
	}
	note = strings.TrimSpace(note)
	if len(note) > maxMoodNote {
		return models.MoodEntry{}, apperr.Validation("note", "Note is too long")
	}

	e, err := s.store.AddMood(ctx, models.MoodEntry{UserID: userID, Mood: mood, Note: note, CreatedAt: s.now()})
	if err != nil {
		s.log.Error("mood store failure", zap.String("op", "record"), zap.String("user_id", userID), zap.Error(err))
		return models.MoodEntry{}, apperr.Store("record mood", err)
	}
	return e, nil
}

// List returns the newest entries first. A non-positive limit means the
// default; larger limits are clamped.
func (s *MoodService) List(ctx context.Context, userID string, limit int) ([]models.MoodEntry, error) {
	if userID == "" {
		return nil, apperr.Auth("Authentication required")
	}
	if limit <= 0 {
		limit = DefaultMoodLimit
	}
	if limit > MaxMoodLimit {
		limit = MaxMoodLimit
	}

	entries, err := s.store.ListMoods(ctx, userID, limit)
	if err != nil {
		s.log.Error("mood store failure", zap.String("op", "list"), zap.String("user_id", userID), zap.Error(err))
		return nil, apperr.Store("list moods", err)
	}
	if entries == nil {
		entries = []models.MoodEntry{}
	}
	return entries, nil
}
