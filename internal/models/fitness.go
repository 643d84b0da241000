package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const ProviderGoogleFit = "googlefit"

// FitnessSnapshot is a per-day activity summary pulled from a fitness provider.
// There is at most one snapshot per (user, provider, date).
type FitnessSnapshot struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"userId"`
	Provider  string             `bson:"provider" json:"provider"`
	Date      string             `bson:"date" json:"date"`
	Steps     int64              `bson:"steps" json:"steps"`
	Calories  float64            `bson:"calories" json:"calories"`
	HeartRate float64            `bson:"heart_rate,omitempty" json:"heartRate,omitempty"`
	FetchedAt time.Time          `bson:"fetched_at" json:"fetchedAt"`
}
