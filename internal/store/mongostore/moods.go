package mongostore

import (
	"context"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MoodStore struct {
	coll *mongo.Collection
}

var _ store.MoodStore = (*MoodStore)(nil)

func NewMoodStore(coll *mongo.Collection) *MoodStore {
	return &MoodStore{coll: coll}
}

func (s *MoodStore) AddMood(ctx context.Context, e models.MoodEntry) (models.MoodEntry, error) {
	e.ID = primitive.NewObjectID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if _, err := s.coll.InsertOne(ctx, e); err != nil {
		return models.MoodEntry{}, translate(s.coll, err)
	}
	return e, nil
}

func (s *MoodStore) ListMoods(ctx context.Context, userID string, limit int) ([]models.MoodEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, translate(s.coll, err)
	}
	defer cursor.Close(ctx)

	entries := []models.MoodEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, translate(s.coll, err)
	}
	return entries, nil
}

func (s *MoodStore) DeleteMoodsForUser(ctx context.Context, userID string) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"user_id": userID})
	return translate(s.coll, err)
}
