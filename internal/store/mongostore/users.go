package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserStore struct {
	coll *mongo.Collection
}

var _ store.UserStore = (*UserStore)(nil)

func NewUserStore(coll *mongo.Collection) *UserStore {
	return &UserStore{coll: coll}
}

func (s *UserStore) UpsertUser(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"email":        u.Email,
			"display_name": u.DisplayName,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"created_at":         now,
			"preferences":        models.Preferences{Notifications: true},
			"anonymous_mode":     false,
			"connected_accounts": bson.M{},
		},
	}

	var out models.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"firebase_uid": u.FirebaseUID}, update, upsertAfter).Decode(&out)
	if mongo.IsDuplicateKeyError(err) {
		return models.User{}, store.ErrDuplicate
	}
	if err != nil {
		return models.User{}, translate(s.coll, err)
	}
	return out, nil
}

func (s *UserStore) GetUser(ctx context.Context, uid string) (models.User, error) {
	var out models.User
	if err := s.coll.FindOne(ctx, bson.M{"firebase_uid": uid}).Decode(&out); err != nil {
		return models.User{}, translate(s.coll, err)
	}
	return out, nil
}

func (s *UserStore) UpdatePreferences(ctx context.Context, uid string, patch models.PreferencesPatch) (models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Notifications != nil {
		set["preferences.notifications"] = *patch.Notifications
	}
	if patch.DataSharing != nil {
		set["preferences.data_sharing"] = *patch.DataSharing
	}
	if patch.DarkMode != nil {
		set["preferences.dark_mode"] = *patch.DarkMode
	}
	if patch.AnonymousMode != nil {
		set["anonymous_mode"] = *patch.AnonymousMode
	}
	if patch.DisplayName != nil {
		set["display_name"] = *patch.DisplayName
	}

	var out models.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"firebase_uid": uid}, bson.M{"$set": set}, returnAfter).Decode(&out)
	if err != nil {
		return models.User{}, translate(s.coll, err)
	}
	return out, nil
}

func (s *UserStore) SetFitnessToken(ctx context.Context, uid, provider, sealed string) (models.User, error) {
	if provider != models.ProviderGoogleFit {
		return models.User{}, fmt.Errorf("mongostore: unknown fitness provider %q", provider)
	}
	tokenKey := "fitness_tokens." + provider
	connectedKey := "connected_accounts." + provider
	now := time.Now().UTC()

	var update bson.M
	if sealed == "" {
		update = bson.M{
			"$unset": bson.M{tokenKey: ""},
			"$set":   bson.M{connectedKey: false, "updated_at": now},
		}
	} else {
		update = bson.M{
			"$set": bson.M{tokenKey: sealed, connectedKey: true, "updated_at": now},
		}
	}

	var out models.User
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"firebase_uid": uid}, update, returnAfter).Decode(&out); err != nil {
		return models.User{}, translate(s.coll, err)
	}
	return out, nil
}

func (s *UserStore) DeleteUser(ctx context.Context, uid string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"firebase_uid": uid})
	if err != nil {
		return translate(s.coll, err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
