package memory

import (
	"context"
	"testing"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToggleLikeIsInvolution(t *testing.T) {
	ctx := context.Background()
	s := New()

	p, err := s.CreatePost(ctx, models.Post{UserID: "a", Title: "t", Content: "c"})
	require.NoError(t, err)

	liked, err := s.ToggleLike(ctx, p.ID, "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"u"}, liked.Likes)

	unliked, err := s.ToggleLike(ctx, p.ID, "u")
	require.NoError(t, err)
	assert.Empty(t, unliked.Likes)

	_, err = s.ToggleLike(ctx, primitive.NewObjectID(), "u")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestToggleLikeCollapsesDuplicates(t *testing.T) {
	ctx := context.Background()
	s := New()

	p, err := s.CreatePost(ctx, models.Post{UserID: "a", Title: "t", Content: "c", Likes: []string{"b", "a", "a"}})
	require.NoError(t, err)

	liked, err := s.ToggleLike(ctx, p.ID, "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, liked.Likes)

	unliked, err := s.ToggleLike(ctx, p.ID, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, unliked.Likes)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	p, err := s.CreatePost(ctx, models.Post{UserID: "a", Title: "t", Content: "c"})
	require.NoError(t, err)
	p.Likes = append(p.Likes, "mutated")

	stored, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Likes)
}

func TestScheduleTaskLookupSpansDates(t *testing.T) {
	ctx := context.Background()
	s := New()

	task := models.Task{ID: primitive.NewObjectID(), Title: "Walk", Time: "08:00"}
	_, err := s.AppendTask(ctx, "u1", "2024-03-01", models.Task{ID: primitive.NewObjectID(), Title: "Read", Time: "09:00"})
	require.NoError(t, err)
	_, err = s.AppendTask(ctx, "u1", "2024-03-02", task)
	require.NoError(t, err)

	done := true
	sc, err := s.UpdateTask(ctx, "u1", task.ID, models.TaskPatch{Completed: &done})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", sc.Date)
	assert.True(t, sc.Tasks[0].Completed)

	_, err = s.UpdateTask(ctx, "someone-else", task.ID, models.TaskPatch{Completed: &done})
	assert.ErrorIs(t, err, store.ErrNotFound)

	sc, err = s.DeleteTask(ctx, "u1", task.ID)
	require.NoError(t, err)
	assert.Empty(t, sc.Tasks)

	kept, err := s.GetSchedule(ctx, "u1", "2024-03-02")
	require.NoError(t, err)
	assert.Empty(t, kept.Tasks)
}

func TestListPostsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, _ := s.CreatePost(ctx, models.Post{UserID: "a", Title: "first"})
	second, _ := s.CreatePost(ctx, models.Post{UserID: "b", Title: "second"})

	all, err := s.ListPosts(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	mine, err := s.ListPosts(ctx, "a")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "first", mine[0].Title)
}

func TestUpsertUserRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.UpsertUser(ctx, models.User{FirebaseUID: "a", Email: "x@example.com"})
	require.NoError(t, err)
	_, err = s.UpsertUser(ctx, models.User{FirebaseUID: "b", Email: "x@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	again, err := s.UpsertUser(ctx, models.User{FirebaseUID: "a", Email: "x@example.com", DisplayName: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", again.DisplayName)
	assert.True(t, again.Preferences.Notifications)
}
