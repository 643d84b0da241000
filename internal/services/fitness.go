package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/AnshRaj112/mindhaven-backend/internal/integrations/googlefit"
	"github.com/AnshRaj112/mindhaven-backend/internal/metrics"
	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"github.com/AnshRaj112/mindhaven-backend/pkg/utils"
	"go.uber.org/zap"
)

const defaultFitnessLimit = 14

// ActivitySource returns one day of activity for an access token.
type ActivitySource interface {
	DailySummary(ctx context.Context, accessToken, date string) (googlefit.Summary, error)
}

// TokenSealer encrypts provider tokens before they reach the store.
type TokenSealer interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type FitnessService struct {
	users     store.UserStore
	snapshots store.FitnessStore
	sources   map[string]ActivitySource
	sealer    TokenSealer
	log       *zap.Logger
	now       func() time.Time
}

// NewFitnessService wires the supported providers. A nil sealer disables
// Connect and Sync.
func NewFitnessService(users store.UserStore, snapshots store.FitnessStore, sources map[string]ActivitySource, sealer TokenSealer, log *zap.Logger) *FitnessService {
	return &FitnessService{
		users:     users,
		snapshots: snapshots,
		sources:   sources,
		sealer:    sealer,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *FitnessService) provider(name string) (ActivitySource, error) {
	src, ok := s.sources[name]
	if !ok {
		return nil, apperr.Validation("provider", "Unsupported fitness provider")
	}
	return src, nil
}

// Connect stores an encrypted access token for provider.
func (s *FitnessService) Connect(ctx context.Context, uid, provider, accessToken string) (models.User, error) {
	if _, err := s.provider(provider); err != nil {
		return models.User{}, err
	}
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return models.User{}, apperr.Validation("accessToken", "Access token is required")
	}
	if s.sealer == nil {
		return models.User{}, apperr.As(utils.ErrNoEncryptionKey)
	}

	sealed, err := s.sealer.Encrypt(accessToken)
	if err != nil {
		return models.User{}, apperr.As(err)
	}
	u, err := s.users.SetFitnessToken(ctx, uid, provider, sealed)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return models.User{}, s.storeErr("connect provider", uid, err)
	}
	s.log.Info("fitness provider connected", zap.String("user_id", uid), zap.String("provider", provider))
	return u, nil
}

func (s *FitnessService) Disconnect(ctx context.Context, uid, provider string) (models.User, error) {
	if _, err := s.provider(provider); err != nil {
		return models.User{}, err
	}
	u, err := s.users.SetFitnessToken(ctx, uid, provider, "")
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return models.User{}, s.storeErr("disconnect provider", uid, err)
	}
	return u, nil
}

// Sync pulls the summary for date (today when empty) and upserts the
// snapshot for that day.
func (s *FitnessService) Sync(ctx context.Context, uid, provider, date string) (models.FitnessSnapshot, error) {
	src, err := s.provider(provider)
	if err != nil {
		return models.FitnessSnapshot{}, err
	}
	if date == "" {
		date = s.now().Format(utils.DateLayout)
	}
	if !utils.ValidDate(date) {
		return models.FitnessSnapshot{}, apperr.Validation("date", "Date must be YYYY-MM-DD")
	}

	u, err := s.users.GetUser(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return models.FitnessSnapshot{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return models.FitnessSnapshot{}, s.storeErr("load user", uid, err)
	}
	sealed := u.FitnessTokens[provider]
	if sealed == "" {
		return models.FitnessSnapshot{}, apperr.Validation("provider", "Fitness provider is not connected")
	}
	if s.sealer == nil {
		return models.FitnessSnapshot{}, apperr.As(utils.ErrNoEncryptionKey)
	}
	token, err := s.sealer.Decrypt(sealed)
	if err != nil {
		return models.FitnessSnapshot{}, apperr.As(err)
	}

	sum, err := src.DailySummary(ctx, token, date)
	if err != nil {
		metrics.RecordUpstreamError(provider)
		s.log.Warn("fitness provider failed",
			zap.String("user_id", uid),
			zap.String("provider", provider),
			zap.Bool("unauthorized", errors.Is(err, googlefit.ErrUnauthorized)),
			zap.Error(err))
		return models.FitnessSnapshot{}, apperr.Upstream("fitness provider failed", err)
	}

	snap, err := s.snapshots.UpsertSnapshot(ctx, models.FitnessSnapshot{
		UserID:    uid,
		Provider:  provider,
		Date:      date,
		Steps:     sum.Steps,
		Calories:  sum.Calories,
		HeartRate: sum.HeartRate,
		FetchedAt: s.now(),
	})
	if err != nil {
		return models.FitnessSnapshot{}, s.storeErr("save snapshot", uid, err)
	}
	return snap, nil
}

// Recent lists stored snapshots, newest date first.
func (s *FitnessService) Recent(ctx context.Context, uid string, limit int) ([]models.FitnessSnapshot, error) {
	if limit <= 0 {
		limit = defaultFitnessLimit
	}
	if limit > MaxMoodLimit {
		limit = MaxMoodLimit
	}
	snaps, err := s.snapshots.ListSnapshots(ctx, uid, limit)
	if err != nil {
		return nil, s.storeErr("list snapshots", uid, err)
	}
	if snaps == nil {
		snaps = []models.FitnessSnapshot{}
	}
	return snaps, nil
}

func (s *FitnessService) storeErr(op, uid string, err error) error {
	s.log.Error("fitness store failure", zap.String("op", op), zap.String("user_id", uid), zap.Error(err))
	return apperr.Store(op, err)
}
