package services

import (
	"context"
	"strings"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"go.uber.org/zap"
)

type ResourceService struct {
	store store.ResourceStore
	log   *zap.Logger
}

func NewResourceService(s store.ResourceStore, log *zap.Logger) *ResourceService {
	return &ResourceService{store: s, log: log}
}

// List returns the library sorted by title, optionally for one category.
func (s *ResourceService) List(ctx context.Context, category string) ([]models.Resource, error) {
	rs, err := s.store.ListResources(ctx, strings.TrimSpace(category))
	if err != nil {
		s.log.Error("resource store failure", zap.String("category", category), zap.Error(err))
		return nil, apperr.Store("list resources", err)
	}
	if rs == nil {
		rs = []models.Resource{}
	}
	return rs, nil
}
