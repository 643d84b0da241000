package mongostore

import (
	"context"

	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ResourceStore struct {
	coll *mongo.Collection
}

var _ store.ResourceStore = (*ResourceStore)(nil)

func NewResourceStore(coll *mongo.Collection) *ResourceStore {
	return &ResourceStore{coll: coll}
}

func (s *ResourceStore) ListResources(ctx context.Context, category string) ([]models.Resource, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, translate(s.coll, err)
	}
	defer cursor.Close(ctx)

	out := []models.Resource{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, translate(s.coll, err)
	}
	return out, nil
}
