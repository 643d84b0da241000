package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/moderation"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	maxTitleLength   = 200
	maxContentLength = 10000
	maxCommentLength = 2000
)

type NewPost struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type NewComment struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Content  string `json:"content"`
}

type PostService struct {
	store store.PostStore
	log   *zap.Logger
}

func NewPostService(s store.PostStore, log *zap.Logger) *PostService {
	return &PostService{store: s, log: log}
}

// ListPosts returns every post, or only authorID's when set, newest first.
func (s *PostService) ListPosts(ctx context.Context, authorID string) ([]models.Post, error) {
	posts, err := s.store.ListPosts(ctx, authorID)
	if err != nil {
		return nil, s.storeErr("list posts", authorID, err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

func (s *PostService) CreatePost(ctx context.Context, in NewPost) (models.Post, error) {
	if in.UserID == "" {
		return models.Post{}, apperr.Auth("Authentication required")
	}
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" {
		return models.Post{}, apperr.Validation("title", "Title is required")
	}
	if content == "" {
		return models.Post{}, apperr.Validation("content", "Content is required")
	}
	if len(title) > maxTitleLength {
		return models.Post{}, apperr.Validation("title", "Title is too long")
	}
	if len(content) > maxContentLength {
		return models.Post{}, apperr.Validation("content", "Content is too long")
	}

	verdict := moderation.Check(title + "\n" + content)
	if verdict.Threat {
		s.log.Info("post rejected by moderation", zap.String("user_id", in.UserID), zap.Strings("matched", verdict.Matched))
		return models.Post{}, apperr.Validation("content", "Your post contains threatening language and cannot be published")
	}

	userName := strings.TrimSpace(in.UserName)
	if userName == "" {
		userName = "Anonymous"
	}

	post, err := s.store.CreatePost(ctx, models.Post{
		UserID:       in.UserID,
		UserName:     userName,
		Title:        title,
		Content:      content,
		ImageURL:     strings.TrimSpace(in.ImageURL),
		Likes:        []string{},
		Comments:     []models.Comment{},
		NeedsSupport: verdict.SelfHarm,
	})
	if err != nil {
		return models.Post{}, s.storeErr("create post", in.UserID, err)
	}
	return post, nil
}

// ToggleLike adds userID to the post's likes when absent and removes it otherwise.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (models.Post, error) {
	if userID == "" {
		return models.Post{}, apperr.Auth("Authentication required")
	}
	id, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return models.Post{}, apperr.NotFound("Post not found")
	}
	post, err := s.store.ToggleLike(ctx, id, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Post{}, apperr.NotFound("Post not found")
	}
	if err != nil {
		return models.Post{}, s.storeErr("toggle like", userID, err)
	}
	return post, nil
}

func (s *PostService) AddComment(ctx context.Context, postID string, in NewComment) (models.Post, error) {
	if in.UserID == "" {
		return models.Post{}, apperr.Auth("Authentication required")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return models.Post{}, apperr.Validation("content", "Comment is required")
	}
	if len(content) > maxCommentLength {
		return models.Post{}, apperr.Validation("content", "Comment is too long")
	}
	if moderation.Check(content).Threat {
		return models.Post{}, apperr.Validation("content", "Your comment contains threatening language and cannot be published")
	}
	id, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return models.Post{}, apperr.NotFound("Post not found")
	}

	userName := strings.TrimSpace(in.UserName)
	if userName == "" {
		userName = "Anonymous"
	}
	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    in.UserID,
		UserName:  userName,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	post, err := s.store.AddComment(ctx, id, comment)
	if errors.Is(err, store.ErrNotFound) {
		return models.Post{}, apperr.NotFound("Post not found")
	}
	if err != nil {
		return models.Post{}, s.storeErr("add comment", in.UserID, err)
	}
	return post, nil
}

// DeleteAllForUser removes posts authored by userID. Likes and comments the
// user left on other posts are kept.
func (s *PostService) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.DeletePostsByUser(ctx, userID)
	if err != nil {
		return 0, s.storeErr("delete user posts", userID, err)
	}
	return n, nil
}

func (s *PostService) storeErr(op, userID string, err error) error {
	s.log.Error("post store failure", zap.String("op", op), zap.String("user_id", userID), zap.Error(err))
	return apperr.Store(op, err)
}
