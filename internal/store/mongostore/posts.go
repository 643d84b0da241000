package mongostore

import (
	"context"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PostStore struct {
	coll *mongo.Collection
}

var _ store.PostStore = (*PostStore)(nil)

func NewPostStore(coll *mongo.Collection) *PostStore {
	return &PostStore{coll: coll}
}

func (s *PostStore) CreatePost(ctx context.Context, p models.Post) (models.Post, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}

	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return models.Post{}, translate(s.coll, err)
	}
	return p, nil
}

func (s *PostStore) ListPosts(ctx context.Context, authorID string) ([]models.Post, error) {
	filter := bson.M{}
	if authorID != "" {
		filter["user_id"] = authorID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(s.coll, err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, translate(s.coll, err)
	}
	return posts, nil
}

func (s *PostStore) GetPost(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	var out models.Post
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return models.Post{}, translate(s.coll, err)
	}
	return out, nil
}

// ToggleLike flips membership of userID in one pipeline update, so two
// concurrent toggles by different users never lose each other's like.
func (s *PostStore) ToggleLike(ctx context.Context, id primitive.ObjectID, userID string) (models.Post, error) {
	likes := bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}
	user := bson.M{"$literal": userID}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"likes": bson.M{"$cond": bson.M{
				"if": bson.M{"$in": bson.A{user, likes}},
				"then": bson.M{"$filter": bson.M{
					"input": likes,
					"cond":  bson.M{"$ne": bson.A{"$$this", user}},
				}},
				"else": bson.M{"$concatArrays": bson.A{likes, bson.A{user}}},
			}},
			"updated_at": time.Now().UTC(),
		}}},
	}

	var out models.Post
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, returnAfter).Decode(&out); err != nil {
		return models.Post{}, translate(s.coll, err)
	}
	return out, nil
}

func (s *PostStore) AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) (models.Post, error) {
	update := bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	var out models.Post
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, returnAfter).Decode(&out); err != nil {
		return models.Post{}, translate(s.coll, err)
	}
	return out, nil
}

func (s *PostStore) DeletePostsByUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, translate(s.coll, err)
	}
	return res.DeletedCount, nil
}
