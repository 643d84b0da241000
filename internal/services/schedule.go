package services

import (
	"context"
	"errors"
	"strings"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"github.com/AnshRaj112/mindhaven-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// NewTask is the input of AddTask.
type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Time        string `json:"time"`
	Date        string `json:"date"`
}

type ScheduleService struct {
	store store.ScheduleStore
	log   *zap.Logger
}

func NewScheduleService(s store.ScheduleStore, log *zap.Logger) *ScheduleService {
	return &ScheduleService{store: s, log: log}
}

// GetSchedule returns the tasks for exactly (userID, date); an absent
// schedule is an empty list.
func (s *ScheduleService) GetSchedule(ctx context.Context, userID, date string) ([]models.Task, error) {
	if userID == "" {
		return nil, apperr.Auth("Authentication required")
	}
	if !utils.ValidDate(date) {
		return nil, apperr.Validation("date", "Date must be YYYY-MM-DD")
	}

	sc, err := s.store.GetSchedule(ctx, userID, date)
	if errors.Is(err, store.ErrNotFound) {
		return []models.Task{}, nil
	}
	if err != nil {
		return nil, s.storeErr("get schedule", userID, err)
	}
	if sc.Tasks == nil {
		return []models.Task{}, nil
	}
	return sc.Tasks, nil
}

func (s *ScheduleService) AddTask(ctx context.Context, userID string, in NewTask) (models.Schedule, error) {
	if userID == "" {
		return models.Schedule{}, apperr.Auth("Authentication required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Schedule{}, apperr.Validation("title", "Title is required")
	}
	if in.Time == "" {
		return models.Schedule{}, apperr.Validation("time", "Time is required")
	}
	if !utils.ValidClock(in.Time) {
		return models.Schedule{}, apperr.Validation("time", "Time must be HH:MM")
	}
	if !utils.ValidDate(in.Date) {
		return models.Schedule{}, apperr.Validation("date", "Date must be YYYY-MM-DD")
	}

	task := models.Task{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Time:        in.Time,
		Completed:   false,
	}
	sc, err := s.store.AppendTask(ctx, userID, in.Date, task)
	if err != nil {
		return models.Schedule{}, s.storeErr("add task", userID, err)
	}
	return sc, nil
}

// UpdateTask overwrites only the fields present in patch.
func (s *ScheduleService) UpdateTask(ctx context.Context, userID, taskID string, patch models.TaskPatch) (models.Schedule, error) {
	if userID == "" {
		return models.Schedule{}, apperr.Auth("Authentication required")
	}
	if patch.Empty() {
		return models.Schedule{}, apperr.Validation("task", "Nothing to update")
	}
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return models.Schedule{}, apperr.Validation("title", "Title is required")
		}
		patch.Title = &t
	}
	if patch.Time != nil && !utils.ValidClock(*patch.Time) {
		return models.Schedule{}, apperr.Validation("time", "Time must be HH:MM")
	}

	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return models.Schedule{}, apperr.NotFound("Task not found")
	}
	sc, err := s.store.UpdateTask(ctx, userID, id, patch)
	if errors.Is(err, store.ErrNotFound) {
		return models.Schedule{}, apperr.NotFound("Task not found")
	}
	if err != nil {
		return models.Schedule{}, s.storeErr("update task", userID, err)
	}
	return sc, nil
}

// MarkCompleted sets only the completed flag.
func (s *ScheduleService) MarkCompleted(ctx context.Context, userID, taskID string, completed bool) (models.Schedule, error) {
	return s.UpdateTask(ctx, userID, taskID, models.TaskPatch{Completed: &completed})
}

// DeleteTask removes the task from whichever date holds it.
func (s *ScheduleService) DeleteTask(ctx context.Context, userID, taskID string) (models.Schedule, error) {
	if userID == "" {
		return models.Schedule{}, apperr.Auth("Authentication required")
	}
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return models.Schedule{}, apperr.NotFound("Task not found")
	}
	sc, err := s.store.DeleteTask(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Schedule{}, apperr.NotFound("Task not found")
	}
	if err != nil {
		return models.Schedule{}, s.storeErr("delete task", userID, err)
	}
	return sc, nil
}

func (s *ScheduleService) storeErr(op, userID string, err error) error {
	s.log.Error("schedule store failure", zap.String("op", op), zap.String("user_id", userID), zap.Error(err))
	return apperr.Store(op, err)
}
