package services

import (
	"context"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/AnshRaj112/mindhaven-backend/internal/metrics"
	"github.com/AnshRaj112/mindhaven-backend/pkg/utils"
	"go.uber.org/zap"
)

// ListSubscriber adds a contact to a mailing list.
type ListSubscriber interface {
	Subscribe(ctx context.Context, email string, attributes map[string]string) error
}

type AffirmationService struct {
	list ListSubscriber
	log  *zap.Logger
}

// NewAffirmationService accepts a nil list when the provider is not
// configured; Subscribe then fails as an upstream error.
func NewAffirmationService(list ListSubscriber, log *zap.Logger) *AffirmationService {
	return &AffirmationService{list: list, log: log}
}

// Subscribe signs email up for the daily affirmation mail.
func (s *AffirmationService) Subscribe(ctx context.Context, uid, email string) error {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return apperr.Validation("email", "Email is required")
	}
	if !utils.ValidEmail(email) {
		return apperr.Validation("email", "Email is invalid")
	}
	if s.list == nil {
		return apperr.Upstream("affirmation list is not configured", nil)
	}

	if err := s.list.Subscribe(ctx, email, map[string]string{"USER_ID": uid}); err != nil {
		metrics.RecordUpstreamError("affirmations")
		s.log.Warn("affirmation subscribe failed", zap.String("user_id", uid), zap.Error(err))
		return apperr.Upstream("affirmation subscribe failed", err)
	}
	s.log.Info("affirmations subscribed", zap.String("user_id", uid))
	return nil
}
