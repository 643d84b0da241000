package services

import (
	"context"
	"errors"
	"strings"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"github.com/AnshRaj112/mindhaven-backend/pkg/utils"
	"go.uber.org/zap"
)

type LoginRequest struct {
	FirebaseUID string `json:"firebaseUid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// AccountData is everything owned by a user that account deletion removes.
type AccountData struct {
	Chats     store.ChatStore
	Posts     store.PostStore
	Schedules store.ScheduleStore
	Moods     store.MoodStore
	Fitness   store.FitnessStore
}

type UserService struct {
	users store.UserStore
	owned AccountData
	cache HistoryCache
	log   *zap.Logger
}

func NewUserService(users store.UserStore, owned AccountData, cache HistoryCache, log *zap.Logger) *UserService {
	if cache == nil {
		cache = NopHistoryCache{}
	}
	return &UserService{users: users, owned: owned, cache: cache, log: log}
}

// Login upserts the profile keyed by the identity provider UID.
func (s *UserService) Login(ctx context.Context, in LoginRequest) (models.User, error) {
	if in.FirebaseUID == "" {
		return models.User{}, apperr.Auth("Authentication required")
	}
	email := utils.NormalizeEmail(in.Email)
	if email == "" {
		return models.User{}, apperr.Validation("email", "Email is required")
	}
	if !utils.ValidEmail(email) {
		return models.User{}, apperr.Validation("email", "Email is invalid")
	}
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	u, err := s.users.UpsertUser(ctx, models.User{FirebaseUID: in.FirebaseUID, Email: email, DisplayName: name})
	if errors.Is(err, store.ErrDuplicate) {
		return models.User{}, apperr.Validation("email", "Email is already linked to another account")
	}
	if err != nil {
		return models.User{}, s.storeErr("login", in.FirebaseUID, err)
	}
	s.log.Info("user logged in", zap.String("user_id", in.FirebaseUID))
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, uid string) (models.User, error) {
	u, err := s.users.GetUser(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return models.User{}, s.storeErr("get user", uid, err)
	}
	return u, nil
}

func (s *UserService) UpdatePreferences(ctx context.Context, uid string, patch models.PreferencesPatch) (models.User, error) {
	if patch.Empty() {
		return models.User{}, apperr.Validation("preferences", "Nothing to update")
	}
	if patch.DisplayName != nil {
		name := strings.TrimSpace(*patch.DisplayName)
		if name == "" {
			return models.User{}, apperr.Validation("displayName", "Display name cannot be empty")
		}
		patch.DisplayName = &name
	}

	u, err := s.users.UpdatePreferences(ctx, uid, patch)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return models.User{}, s.storeErr("update preferences", uid, err)
	}
	return u, nil
}

// DeleteAccount removes everything the user owns, then the user. Likes and
// comments on other users' posts are not retracted.
func (s *UserService) DeleteAccount(ctx context.Context, uid string) error {
	if _, err := s.GetUser(ctx, uid); err != nil {
		return err
	}

	if err := s.owned.Chats.DeleteChat(ctx, uid); err != nil {
		return s.storeErr("delete chat", uid, err)
	}
	s.cache.Invalidate(ctx, uid)
	if _, err := s.owned.Posts.DeletePostsByUser(ctx, uid); err != nil {
		return s.storeErr("delete posts", uid, err)
	}
	if err := s.owned.Schedules.DeleteSchedulesForUser(ctx, uid); err != nil {
		return s.storeErr("delete schedules", uid, err)
	}
	if err := s.owned.Moods.DeleteMoodsForUser(ctx, uid); err != nil {
		return s.storeErr("delete moods", uid, err)
	}
	if err := s.owned.Fitness.DeleteSnapshotsForUser(ctx, uid); err != nil {
		return s.storeErr("delete fitness snapshots", uid, err)
	}

	err := s.users.DeleteUser(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return s.storeErr("delete user", uid, err)
	}
	s.log.Info("account deleted", zap.String("user_id", uid))
	return nil
}

func (s *UserService) storeErr(op, uid string, err error) error {
	s.log.Error("user store failure", zap.String("op", op), zap.String("user_id", uid), zap.Error(err))
	return apperr.Store(op, err)
}
