package mongostore

import (
	"context"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ChatStore struct {
	coll *mongo.Collection
}

var _ store.ChatStore = (*ChatStore)(nil)

func NewChatStore(coll *mongo.Collection) *ChatStore {
	return &ChatStore{coll: coll}
}

// EnsureChat writes the seed only on insert, so repeated or concurrent calls
// leave a single greeting. A duplicate key error means a concurrent caller
// won the insert; the existing document is read back.
func (s *ChatStore) EnsureChat(ctx context.Context, userID string, seed models.Message) (models.Chat, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"messages":   []models.Message{seed},
			"created_at": now,
			"updated_at": now,
		},
	}
	_, err := s.coll.UpdateOne(ctx, bson.M{"user_id": userID}, update, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return models.Chat{}, translate(s.coll, err)
	}
	return s.GetChat(ctx, userID)
}

// AppendMessages pushes msgs with one $push $each so they land contiguously
// and become visible together.
func (s *ChatStore) AppendMessages(ctx context.Context, userID string, msgs ...models.Message) (models.Chat, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$push":        bson.M{"messages": bson.M{"$each": msgs}},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}

	var out models.Chat
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, upsertAfter).Decode(&out); err != nil {
		return models.Chat{}, translate(s.coll, err)
	}
	return out, nil
}

func (s *ChatStore) GetChat(ctx context.Context, userID string) (models.Chat, error) {
	var out models.Chat
	if err := s.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&out); err != nil {
		return models.Chat{}, translate(s.coll, err)
	}
	return out, nil
}

func (s *ChatStore) DeleteChat(ctx context.Context, userID string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"user_id": userID})
	return translate(s.coll, err)
}
