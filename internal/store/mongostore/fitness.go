package mongostore

import (
	"context"

	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FitnessStore struct {
	coll *mongo.Collection
}

var _ store.FitnessStore = (*FitnessStore)(nil)

func NewFitnessStore(coll *mongo.Collection) *FitnessStore {
	return &FitnessStore{coll: coll}
}

func (s *FitnessStore) UpsertSnapshot(ctx context.Context, snap models.FitnessSnapshot) (models.FitnessSnapshot, error) {
	filter := bson.M{"user_id": snap.UserID, "provider": snap.Provider, "date": snap.Date}
	update := bson.M{"$set": bson.M{
		"steps":      snap.Steps,
		"calories":   snap.Calories,
		"heart_rate": snap.HeartRate,
		"fetched_at": snap.FetchedAt,
	}}

	var out models.FitnessSnapshot
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, upsertAfter).Decode(&out); err != nil {
		return models.FitnessSnapshot{}, translate(s.coll, err)
	}
	return out, nil
}

func (s *FitnessStore) ListSnapshots(ctx context.Context, userID string, limit int) ([]models.FitnessSnapshot, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "provider", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, translate(s.coll, err)
	}
	defer cursor.Close(ctx)

	out := []models.FitnessSnapshot{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, translate(s.coll, err)
	}
	return out, nil
}

func (s *FitnessStore) DeleteSnapshotsForUser(ctx context.Context, userID string) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"user_id": userID})
	return translate(s.coll, err)
}
