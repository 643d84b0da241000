// Package mongostore implements the store interfaces on MongoDB. Every
// mutation is a single-document update so concurrent requests never need
// application-level locking.
package mongostore

import (
	"errors"

	"github.com/AnshRaj112/mindhaven-backend/internal/database"
	"github.com/AnshRaj112/mindhaven-backend/internal/metrics"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Stores bundles one store per collection of db.
type Stores struct {
	Users     *UserStore
	Chats     *ChatStore
	Schedules *ScheduleStore
	Posts     *PostStore
	Moods     *MoodStore
	Fitness   *FitnessStore
	Resources *ResourceStore
}

func New(db *mongo.Database) *Stores {
	return &Stores{
		Users:     NewUserStore(db.Collection(database.CollUsers)),
		Chats:     NewChatStore(db.Collection(database.CollChats)),
		Schedules: NewScheduleStore(db.Collection(database.CollSchedules)),
		Posts:     NewPostStore(db.Collection(database.CollPosts)),
		Moods:     NewMoodStore(db.Collection(database.CollMoods)),
		Fitness:   NewFitnessStore(db.Collection(database.CollFitness)),
		Resources: NewResourceStore(db.Collection(database.CollResources)),
	}
}

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

var upsertAfter = options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(true)

// translate maps driver errors onto store errors and counts real failures.
func translate(coll *mongo.Collection, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	metrics.RecordStoreError(coll.Name())
	return err
}
