package services

import (
	"context"
	"testing"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newScheduleService() *ScheduleService {
	return NewScheduleService(memory.New(), zap.NewNop())
}

func TestAddTaskThenGetSchedule(t *testing.T) {
	ctx := context.Background()
	svc := newScheduleService()

	_, err := svc.AddTask(ctx, "u", NewTask{Date: "2025-01-01", Title: "Walk", Time: "08:00"})
	require.NoError(t, err)

	tasks, err := svc.GetSchedule(ctx, "u", "2025-01-01")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Walk", tasks[0].Title)
	assert.Equal(t, "08:00", tasks[0].Time)
	assert.False(t, tasks[0].Completed)
	assert.False(t, tasks[0].ID.IsZero())

	other, err := svc.GetSchedule(ctx, "u", "2025-01-02")
	require.NoError(t, err)
	assert.NotNil(t, other)
	assert.Empty(t, other)

	stranger, err := svc.GetSchedule(ctx, "v", "2025-01-01")
	require.NoError(t, err)
	assert.Empty(t, stranger)
}

func TestAddTaskKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	svc := newScheduleService()

	for _, title := range []string{"Wake", "Meditate", "Journal"} {
		_, err := svc.AddTask(ctx, "u", NewTask{Date: "2025-01-01", Title: title, Time: "07:00"})
		require.NoError(t, err)
	}
	tasks, err := svc.GetSchedule(ctx, "u", "2025-01-01")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "Wake", tasks[0].Title)
	assert.Equal(t, "Meditate", tasks[1].Title)
	assert.Equal(t, "Journal", tasks[2].Title)
}

func TestAddTaskValidation(t *testing.T) {
	ctx := context.Background()
	svc := newScheduleService()

	cases := []NewTask{
		{Date: "2025-01-01", Title: "", Time: "08:00"},
		{Date: "2025-01-01", Title: "Walk", Time: ""},
		{Date: "2025-01-01", Title: "Walk", Time: "25:00"},
		{Date: "01/01/2025", Title: "Walk", Time: "08:00"},
	}
	for _, in := range cases {
		_, err := svc.AddTask(ctx, "u", in)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "%+v", in)
	}

	_, err := svc.GetSchedule(ctx, "u", "tomorrow")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUpdateAndMarkCompleted(t *testing.T) {
	ctx := context.Background()
	svc := newScheduleService()

	sc, err := svc.AddTask(ctx, "u", NewTask{Date: "2025-01-01", Title: "Walk", Time: "08:00", Description: "park"})
	require.NoError(t, err)
	id := sc.Tasks[0].ID.Hex()

	sc, err = svc.MarkCompleted(ctx, "u", id, true)
	require.NoError(t, err)
	assert.True(t, sc.Tasks[0].Completed)
	assert.Equal(t, "park", sc.Tasks[0].Description)

	again, err := svc.MarkCompleted(ctx, "u", id, true)
	require.NoError(t, err)
	assert.Equal(t, sc.Tasks, again.Tasks)

	newTime := "09:30"
	sc, err = svc.UpdateTask(ctx, "u", id, models.TaskPatch{Time: &newTime})
	require.NoError(t, err)
	assert.Equal(t, "09:30", sc.Tasks[0].Time)
	assert.Equal(t, "Walk", sc.Tasks[0].Title)
	assert.True(t, sc.Tasks[0].Completed)

	_, err = svc.UpdateTask(ctx, "u", id, models.TaskPatch{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.MarkCompleted(ctx, "other-user", id, false)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.MarkCompleted(ctx, "u", "not-an-id", false)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteMissingTaskLeavesScheduleUnchanged(t *testing.T) {
	ctx := context.Background()
	svc := newScheduleService()

	_, err := svc.AddTask(ctx, "u", NewTask{Date: "2025-01-01", Title: "Walk", Time: "08:00"})
	require.NoError(t, err)
	before, err := svc.GetSchedule(ctx, "u", "2025-01-01")
	require.NoError(t, err)

	_, err = svc.DeleteTask(ctx, "u", primitive.NewObjectID().Hex())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	after, err := svc.GetSchedule(ctx, "u", "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	sc, err := svc.DeleteTask(ctx, "u", before[0].ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, sc.Tasks)

	_, err = svc.DeleteTask(ctx, "u", before[0].ID.Hex())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
