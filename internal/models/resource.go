package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Resource is an entry of the public self-help library.
type Resource struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Category    string             `bson:"category" json:"category"`
	URL         string             `bson:"url" json:"url"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
}
