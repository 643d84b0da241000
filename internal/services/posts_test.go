package services

import (
	"context"
	"testing"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/AnshRaj112/mindhaven-backend/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestPostAndLikeScenario(t *testing.T) {
	ctx := context.Background()
	svc := NewPostService(memory.New(), zap.NewNop())

	post, err := svc.CreatePost(ctx, NewPost{UserID: "A", UserName: "Ann", Title: "Hi", Content: "World"})
	require.NoError(t, err)
	assert.Empty(t, post.Likes)
	assert.Empty(t, post.Comments)
	assert.False(t, post.NeedsSupport)

	all, err := svc.ListPosts(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, post.ID, all[0].ID)

	liked, err := svc.ToggleLike(ctx, post.ID.Hex(), "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, liked.Likes)

	unliked, err := svc.ToggleLike(ctx, post.ID.Hex(), "B")
	require.NoError(t, err)
	assert.Empty(t, unliked.Likes)
}

func TestToggleLikeUnknownPost(t *testing.T) {
	ctx := context.Background()
	svc := NewPostService(memory.New(), zap.NewNop())

	_, err := svc.ToggleLike(ctx, primitive.NewObjectID().Hex(), "B")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.ToggleLike(ctx, "zzz", "B")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCreatePostValidationAndModeration(t *testing.T) {
	ctx := context.Background()
	svc := NewPostService(memory.New(), zap.NewNop())

	_, err := svc.CreatePost(ctx, NewPost{UserID: "A", Title: "  ", Content: "x"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.CreatePost(ctx, NewPost{UserID: "A", Title: "x", Content: ""})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.CreatePost(ctx, NewPost{UserID: "A", Title: "angry", Content: "I will kill you"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	post, err := svc.CreatePost(ctx, NewPost{UserID: "A", Title: "low", Content: "some nights I want to end my life"})
	require.NoError(t, err)
	assert.True(t, post.NeedsSupport)
	assert.Equal(t, "Anonymous", post.UserName)
}

func TestCommentsAppendInOrder(t *testing.T) {
	ctx := context.Background()
	svc := NewPostService(memory.New(), zap.NewNop())

	post, err := svc.CreatePost(ctx, NewPost{UserID: "A", UserName: "Ann", Title: "Hi", Content: "World"})
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, post.ID.Hex(), NewComment{UserID: "B", UserName: "Bo", Content: "first"})
	require.NoError(t, err)
	updated, err := svc.AddComment(ctx, post.ID.Hex(), NewComment{UserID: "C", UserName: "Cy", Content: "second"})
	require.NoError(t, err)

	require.Len(t, updated.Comments, 2)
	assert.Equal(t, "first", updated.Comments[0].Content)
	assert.Equal(t, "second", updated.Comments[1].Content)
	assert.False(t, updated.Comments[0].ID.IsZero())

	_, err = svc.AddComment(ctx, post.ID.Hex(), NewComment{UserID: "B", Content: " "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.AddComment(ctx, primitive.NewObjectID().Hex(), NewComment{UserID: "B", Content: "hello"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListPostsByAuthorAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewPostService(memory.New(), zap.NewNop())

	for _, author := range []string{"A", "B", "A"} {
		_, err := svc.CreatePost(ctx, NewPost{UserID: author, Title: "t", Content: "c"})
		require.NoError(t, err)
	}

	mine, err := svc.ListPosts(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	n, err := svc.DeleteAllForUser(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err := svc.ListPosts(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "B", all[0].UserID)
}
