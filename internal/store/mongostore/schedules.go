package mongostore

import (
	"context"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ScheduleStore struct {
	coll *mongo.Collection
}

var _ store.ScheduleStore = (*ScheduleStore)(nil)

func NewScheduleStore(coll *mongo.Collection) *ScheduleStore {
	return &ScheduleStore{coll: coll}
}

func (s *ScheduleStore) GetSchedule(ctx context.Context, userID, date string) (models.Schedule, error) {
	var out models.Schedule
	if err := s.coll.FindOne(ctx, bson.M{"user_id": userID, "date": date}).Decode(&out); err != nil {
		return models.Schedule{}, translate(s.coll, err)
	}
	return out, nil
}

func (s *ScheduleStore) AppendTask(ctx context.Context, userID, date string, task models.Task) (models.Schedule, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$push":        bson.M{"tasks": task},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}

	var out models.Schedule
	filter := bson.M{"user_id": userID, "date": date}
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, upsertAfter).Decode(&out); err != nil {
		return models.Schedule{}, translate(s.coll, err)
	}
	return out, nil
}

// UpdateTask sets only the patched fields of the matched task through the
// positional operator.
func (s *ScheduleStore) UpdateTask(ctx context.Context, userID string, taskID primitive.ObjectID, patch models.TaskPatch) (models.Schedule, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["tasks.$.title"] = *patch.Title
	}
	if patch.Description != nil {
		set["tasks.$.description"] = *patch.Description
	}
	if patch.Time != nil {
		set["tasks.$.time"] = *patch.Time
	}
	if patch.Completed != nil {
		set["tasks.$.completed"] = *patch.Completed
	}

	var out models.Schedule
	filter := bson.M{"user_id": userID, "tasks._id": taskID}
	if err := s.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, returnAfter).Decode(&out); err != nil {
		return models.Schedule{}, translate(s.coll, err)
	}
	return out, nil
}

// DeleteTask pulls the task from whichever schedule holds it. The schedule
// document is kept even when it becomes empty.
func (s *ScheduleStore) DeleteTask(ctx context.Context, userID string, taskID primitive.ObjectID) (models.Schedule, error) {
	update := bson.M{
		"$pull": bson.M{"tasks": bson.M{"_id": taskID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	var out models.Schedule
	filter := bson.M{"user_id": userID, "tasks._id": taskID}
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, returnAfter).Decode(&out); err != nil {
		return models.Schedule{}, translate(s.coll, err)
	}
	return out, nil
}

func (s *ScheduleStore) DeleteSchedulesForUser(ctx context.Context, userID string) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"user_id": userID})
	return translate(s.coll, err)
}
