package handlers

import (
	"net/http"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type addTaskRequest struct {
	UserID string           `json:"userId"`
	Date   string           `json:"date,omitempty"`
	Task   services.NewTask `json:"task"`
}

type updateTaskRequest struct {
	UserID string `json:"userId"`
	TaskID string `json:"taskId"`
	models.TaskPatch
}

type completeTaskRequest struct {
	UserID    string `json:"userId"`
	TaskID    string `json:"taskId"`
	Completed *bool  `json:"completed"`
}

type tasksResponse struct {
	Tasks []models.Task `json:"tasks"`
}

// GetSchedule handles GET /api/schedule?userId&date.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	uid, ok := h.caller(w, r, q.Get("userId"))
	if !ok {
		return
	}
	tasks, err := h.svc.Schedule.GetSchedule(r.Context(), uid, q.Get("date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasksResponse{Tasks: tasks})
}

func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	var req addTaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	uid, ok := h.caller(w, r, req.UserID)
	if !ok {
		return
	}
	if req.Task.Date == "" {
		req.Task.Date = req.Date
	}
	sc, err := h.svc.Schedule.AddTask(r.Context(), uid, req.Task)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

// CompleteTask handles PATCH /api/schedule/task.
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	var req completeTaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	uid, ok := h.caller(w, r, req.UserID)
	if !ok {
		return
	}
	if req.Completed == nil {
		h.writeError(w, r, apperr.Validation("completed", "completed is required"))
		return
	}
	sc, err := h.svc.Schedule.MarkCompleted(r.Context(), uid, req.TaskID, *req.Completed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// UpdateTask handles PUT /api/schedule/task.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	uid, ok := h.caller(w, r, req.UserID)
	if !ok {
		return
	}
	sc, err := h.svc.Schedule.UpdateTask(r.Context(), uid, req.TaskID, req.TaskPatch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// DeleteTask handles DELETE /api/schedule/{taskId}?userId.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.caller(w, r, r.URL.Query().Get("userId"))
	if !ok {
		return
	}
	sc, err := h.svc.Schedule.DeleteTask(r.Context(), uid, chi.URLParam(r, "taskId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}
