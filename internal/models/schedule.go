package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Task struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Time        string             `bson:"time" json:"time"` // HH:MM
	Completed   bool               `bson:"completed" json:"completed"`
}

// Schedule is the task list of one user for one calendar date (YYYY-MM-DD).
type Schedule struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"userId"`
	Date      string             `bson:"date" json:"date"`
	Tasks     []Task             `bson:"tasks" json:"tasks"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// TaskPatch overwrites only the non-nil fields of a task.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Time        *string `json:"time,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Time == nil && p.Completed == nil
}

func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Time != nil {
		t.Time = *p.Time
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
