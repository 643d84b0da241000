package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	CollUsers     = "users"
	CollChats     = "chats"
	CollPosts     = "posts"
	CollSchedules = "schedules"
	CollMoods     = "moods"
	CollFitness   = "fitness_snapshots"
	CollResources = "resources"
)

// EnsureIndexes configures the indexes every store relies on. The unique
// indexes back the one-document-per-key invariants (one chat per user, one
// schedule per user and date).
// Called on startup from main after Mongo has connected.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		CollUsers: {
			{
				Keys:    bson.D{{Key: "firebase_uid", Value: 1}},
				Options: options.Index().SetName("uniq_firebase_uid").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("uniq_email").SetUnique(true),
			},
		},
		CollChats: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetName("uniq_user").SetUnique(true),
			},
		},
		CollSchedules: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "date", Value: 1},
				},
				Options: options.Index().SetName("uniq_user_date").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "tasks._id", Value: 1}},
				Options: options.Index().SetName("idx_task_id"),
			},
		},
		CollPosts: {
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_created"),
			},
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "created_at", Value: -1},
				},
				Options: options.Index().SetName("idx_user_created"),
			},
		},
		CollMoods: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "created_at", Value: -1},
				},
				Options: options.Index().SetName("idx_user_created"),
			},
		},
		CollFitness: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "provider", Value: 1},
					{Key: "date", Value: 1},
				},
				Options: options.Index().SetName("uniq_user_provider_date").SetUnique(true),
			},
		},
		CollResources: {
			{
				Keys: bson.D{
					{Key: "category", Value: 1},
					{Key: "title", Value: 1},
				},
				Options: options.Index().SetName("idx_category_title"),
			},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
