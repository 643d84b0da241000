package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sender identifies who produced a chat turn.
// Valid values: "system", "user", "bot".
type Sender string

const (
	SenderSystem Sender = "system"
	SenderUser   Sender = "user"
	SenderBot    Sender = "bot"
)

func (s Sender) Valid() bool {
	return s == SenderSystem || s == SenderUser || s == SenderBot
}

// Message is a single turn in a user's conversation with the assistant.
type Message struct {
	Text      string    `bson:"text" json:"text"`
	Sender    Sender    `bson:"sender" json:"sender"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Emotion   string    `bson:"emotion,omitempty" json:"emotion,omitempty"`
}

// Chat holds one user's whole conversation. Messages are append-only and
// stored in arrival order.
type Chat struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"userId"`
	Messages  []Message          `bson:"messages" json:"messages"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}
