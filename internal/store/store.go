// Package store declares the persistence contracts used by the services.
// mongostore is the production implementation; memory backs the tests.
package store

import (
	"context"
	"errors"

	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a write violates a unique key, such as
	// an email already linked to another account.
	ErrDuplicate = errors.New("store: duplicate key")
)

// UserStore persists user profiles keyed by identity provider UID.
type UserStore interface {
	// UpsertUser creates the user on first login and refreshes email and
	// display name afterwards.
	UpsertUser(ctx context.Context, u models.User) (models.User, error)
	GetUser(ctx context.Context, uid string) (models.User, error)
	UpdatePreferences(ctx context.Context, uid string, patch models.PreferencesPatch) (models.User, error)
	// SetFitnessToken stores a sealed token for provider and marks it
	// connected. An empty token removes it and marks it disconnected.
	SetFitnessToken(ctx context.Context, uid, provider, sealed string) (models.User, error)
	DeleteUser(ctx context.Context, uid string) error
}

// ChatStore persists one append-only conversation per user.
type ChatStore interface {
	// EnsureChat returns the user's chat, creating it with seed when absent.
	EnsureChat(ctx context.Context, userID string, seed models.Message) (models.Chat, error)
	// AppendMessages appends msgs contiguously in a single update, creating
	// the chat when absent.
	AppendMessages(ctx context.Context, userID string, msgs ...models.Message) (models.Chat, error)
	GetChat(ctx context.Context, userID string) (models.Chat, error)
	DeleteChat(ctx context.Context, userID string) error
}

// ScheduleStore persists one task list per (user, date).
type ScheduleStore interface {
	GetSchedule(ctx context.Context, userID, date string) (models.Schedule, error)
	AppendTask(ctx context.Context, userID, date string, task models.Task) (models.Schedule, error)
	UpdateTask(ctx context.Context, userID string, taskID primitive.ObjectID, patch models.TaskPatch) (models.Schedule, error)
	DeleteTask(ctx context.Context, userID string, taskID primitive.ObjectID) (models.Schedule, error)
	DeleteSchedulesForUser(ctx context.Context, userID string) error
}

// PostStore persists community posts.
type PostStore interface {
	CreatePost(ctx context.Context, p models.Post) (models.Post, error)
	// ListPosts returns posts newest first. An empty authorID lists everything.
	ListPosts(ctx context.Context, authorID string) ([]models.Post, error)
	GetPost(ctx context.Context, id primitive.ObjectID) (models.Post, error)
	ToggleLike(ctx context.Context, id primitive.ObjectID, userID string) (models.Post, error)
	AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) (models.Post, error)
	DeletePostsByUser(ctx context.Context, userID string) (int64, error)
}

// MoodStore persists mood ratings.
type MoodStore interface {
	AddMood(ctx context.Context, e models.MoodEntry) (models.MoodEntry, error)
	// ListMoods returns at most limit entries, newest first.
	ListMoods(ctx context.Context, userID string, limit int) ([]models.MoodEntry, error)
	DeleteMoodsForUser(ctx context.Context, userID string) error
}

// FitnessStore persists daily activity snapshots.
type FitnessStore interface {
	// UpsertSnapshot replaces the snapshot for (user, provider, date).
	UpsertSnapshot(ctx context.Context, s models.FitnessSnapshot) (models.FitnessSnapshot, error)
	ListSnapshots(ctx context.Context, userID string, limit int) ([]models.FitnessSnapshot, error)
	DeleteSnapshotsForUser(ctx context.Context, userID string) error
}

// ResourceStore reads the public resource library.
type ResourceStore interface {
	ListResources(ctx context.Context, category string) ([]models.Resource, error)
}
