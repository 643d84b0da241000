package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    string             `bson:"user_id" json:"userId"`
	UserName  string             `bson:"user_name" json:"userName"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Post is a community forum entry. Likes holds the ids of liking users; each
// id appears at most once.
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`

	UserID   string `bson:"user_id" json:"userId"`
	UserName string `bson:"user_name" json:"userName"`
	Title    string `bson:"title" json:"title"`
	Content  string `bson:"content" json:"content"`
	ImageURL string `bson:"image_url,omitempty" json:"imageUrl,omitempty"`

	Likes    []string  `bson:"likes" json:"likes"`
	Comments []Comment `bson:"comments" json:"comments"`

	// Set by moderation when the content suggests the author may need support.
	NeedsSupport bool `bson:"needs_support" json:"needsSupport"`
}

// LikeSet is the membership view of Post.Likes.
type LikeSet map[string]struct{}

func NewLikeSet(ids []string) LikeSet {
	s := make(LikeSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s LikeSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Toggle removes id when present and adds it otherwise. It returns true when
// id is a member afterwards.
func (s LikeSet) Toggle(id string) bool {
	if s.Has(id) {
		delete(s, id)
		return false
	}
	s[id] = struct{}{}
	return true
}

// Slice returns the members in a stable order.
func (s LikeSet) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
