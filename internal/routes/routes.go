package routes

import (
	"net/http"

	"github.com/AnshRaj112/mindhaven-backend/internal/handlers"
	"github.com/AnshRaj112/mindhaven-backend/internal/metrics"
	"github.com/AnshRaj112/mindhaven-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// Options are route-level knobs that come from configuration.
type Options struct {
	TrustProxy bool
}

func SetupRoutes(r chi.Router, h *handlers.Handler, auth *middleware.Authenticator, opts Options) {
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Public reads
	r.Get("/api/posts", h.ListPosts)
	r.Get("/api/resources", h.ListResources)
	r.Get("/api/assessment/questions", h.GetQuestionnaire)
	r.Post("/api/assessment/score", h.ScoreAssessment)

	r.Group(func(r chi.Router) {
		r.Use(auth.Require)

		// Chat
		r.Post("/api/chat/initialize/{userId}", h.InitializeChat)
		r.Post("/api/chat/save/{userId}", h.SaveChatMessage)
		r.Get("/api/chat/{userId}", h.GetChatHistory)
		r.With(middleware.ChatSendRateLimit(opts.TrustProxy)).Post("/api/chat/{userId}", h.SendChatMessage)
		r.Delete("/api/chat/{userId}", h.DeleteChatHistory)

		// Community posts
		r.Post("/api/posts", h.CreatePost)
		r.Put("/api/posts/{id}/like", h.ToggleLike)
		r.Post("/api/posts/{id}/comments", h.AddComment)

		// Schedule
		r.Get("/api/schedule", h.GetSchedule)
		r.Post("/api/schedule", h.AddTask)
		r.Patch("/api/schedule/task", h.CompleteTask)
		r.Put("/api/schedule/task", h.UpdateTask)
		r.Delete("/api/schedule/{taskId}", h.DeleteTask)

		// Users
		r.Post("/api/users/login", h.Login)
		r.Get("/api/users/{id}", h.GetUser)
		r.Patch("/api/users/{id}/preferences", h.UpdatePreferences)
		r.Delete("/api/users/{id}", h.DeleteUser)

		// Mood tracking
		r.Post("/api/mood", h.RecordMood)
		r.Get("/api/mood", h.ListMoods)

		// Fitness
		r.Get("/api/fitness", h.ListFitness)
		r.Post("/api/fitness/connect", h.ConnectFitness)
		r.Post("/api/fitness/sync", h.SyncFitness)
		r.Delete("/api/fitness/{provider}", h.DisconnectFitness)

		// Group sessions
		r.Get("/api/sessions", h.ListSessions)
		r.Post("/api/sessions", h.CreateSession)
		r.Post("/api/sessions/{id}/join", h.JoinSession)
		r.Post("/api/sessions/{id}/leave", h.LeaveSession)
		r.Post("/api/sessions/{id}/audio", h.ToggleSessionAudio)
		r.Get("/ws/sessions/{id}", h.SessionWebSocket)

		r.Post("/api/affirmations/subscribe", h.SubscribeAffirmations)
		r.Post("/api/upload", h.UploadFile)
	})
}
