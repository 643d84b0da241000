package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/AnshRaj112/mindhaven-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is an in-memory implementation of the store interfaces. It is safe
// for concurrent use and is intended for tests and local development.
type Store struct {
	mu        sync.RWMutex
	users     map[string]models.User
	chats     map[string]models.Chat
	schedules map[scheduleKey]models.Schedule
	posts     map[primitive.ObjectID]models.Post
	moods     map[string][]models.MoodEntry
	fitness   map[fitnessKey]models.FitnessSnapshot
	resources []models.Resource

	now func() time.Time
}

type scheduleKey struct{ userID, date string }

type fitnessKey struct{ userID, provider, date string }

var _ store.UserStore = (*Store)(nil)
var _ store.ChatStore = (*Store)(nil)
var _ store.ScheduleStore = (*Store)(nil)
var _ store.PostStore = (*Store)(nil)
var _ store.MoodStore = (*Store)(nil)
var _ store.FitnessStore = (*Store)(nil)
var _ store.ResourceStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:     make(map[string]models.User),
		chats:     make(map[string]models.Chat),
		schedules: make(map[scheduleKey]models.Schedule),
		posts:     make(map[primitive.ObjectID]models.Post),
		moods:     make(map[string][]models.MoodEntry),
		fitness:   make(map[fitnessKey]models.FitnessSnapshot),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SeedResources replaces the resource library.
func (s *Store) SeedResources(rs ...models.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = append([]models.Resource(nil), rs...)
	for i := range s.resources {
		if s.resources[i].ID.IsZero() {
			s.resources[i].ID = primitive.NewObjectID()
		}
	}
}

// UserStore implementation ---------------------------------------------------

func (s *Store) UpsertUser(_ context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for uid, other := range s.users {
		if uid != u.FirebaseUID && u.Email != "" && other.Email == u.Email {
			return models.User{}, store.ErrDuplicate
		}
	}

	now := s.now()
	existing, ok := s.users[u.FirebaseUID]
	if !ok {
		existing = models.User{
			ID:                primitive.NewObjectID(),
			CreatedAt:         now,
			FirebaseUID:       u.FirebaseUID,
			Preferences:       models.Preferences{Notifications: true},
			ConnectedAccounts: map[string]bool{},
		}
	}
	existing.Email = u.Email
	existing.DisplayName = u.DisplayName
	existing.UpdatedAt = now
	s.users[u.FirebaseUID] = existing
	return cloneUser(existing), nil
}

func (s *Store) GetUser(_ context.Context, uid string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[uid]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) UpdatePreferences(_ context.Context, uid string, patch models.PreferencesPatch) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[uid]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	patch.Apply(&u)
	u.UpdatedAt = s.now()
	s.users[uid] = u
	return cloneUser(u), nil
}

func (s *Store) SetFitnessToken(_ context.Context, uid, provider, sealed string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[uid]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	u = cloneUser(u)
	if u.ConnectedAccounts == nil {
		u.ConnectedAccounts = map[string]bool{}
	}
	if sealed == "" {
		delete(u.FitnessTokens, provider)
		u.ConnectedAccounts[provider] = false
	} else {
		if u.FitnessTokens == nil {
			u.FitnessTokens = map[string]string{}
		}
		u.FitnessTokens[provider] = sealed
		u.ConnectedAccounts[provider] = true
	}
	u.UpdatedAt = s.now()
	s.users[uid] = u
	return cloneUser(u), nil
}

func (s *Store) DeleteUser(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[uid]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, uid)
	return nil
}

// ChatStore implementation ---------------------------------------------------

func (s *Store) EnsureChat(_ context.Context, userID string, seed models.Message) (models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.chats[userID]; ok {
		return cloneChat(c), nil
	}
	now := s.now()
	c := models.Chat{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Messages:  []models.Message{seed},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.chats[userID] = c
	return cloneChat(c), nil
}

func (s *Store) AppendMessages(_ context.Context, userID string, msgs ...models.Message) (models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.chats[userID]
	if !ok {
		c = models.Chat{ID: primitive.NewObjectID(), UserID: userID, CreatedAt: now}
	}
	c.Messages = append(append([]models.Message(nil), c.Messages...), msgs...)
	c.UpdatedAt = now
	s.chats[userID] = c
	return cloneChat(c), nil
}

func (s *Store) GetChat(_ context.Context, userID string) (models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.chats[userID]
	if !ok {
		return models.Chat{}, store.ErrNotFound
	}
	return cloneChat(c), nil
}

func (s *Store) DeleteChat(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, userID)
	return nil
}

// ScheduleStore implementation -----------------------------------------------

func (s *Store) GetSchedule(_ context.Context, userID, date string) (models.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.schedules[scheduleKey{userID, date}]
	if !ok {
		return models.Schedule{}, store.ErrNotFound
	}
	return cloneSchedule(sc), nil
}

func (s *Store) AppendTask(_ context.Context, userID, date string, task models.Task) (models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := scheduleKey{userID, date}
	sc, ok := s.schedules[key]
	if !ok {
		sc = models.Schedule{ID: primitive.NewObjectID(), UserID: userID, Date: date, CreatedAt: now}
	}
	sc.Tasks = append(append([]models.Task(nil), sc.Tasks...), task)
	sc.UpdatedAt = now
	s.schedules[key] = sc
	return cloneSchedule(sc), nil
}

func (s *Store) UpdateTask(_ context.Context, userID string, taskID primitive.ObjectID, patch models.TaskPatch) (models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, idx, ok := s.findTaskLocked(userID, taskID)
	if !ok {
		return models.Schedule{}, store.ErrNotFound
	}
	sc := cloneSchedule(s.schedules[key])
	patch.Apply(&sc.Tasks[idx])
	sc.UpdatedAt = s.now()
	s.schedules[key] = sc
	return cloneSchedule(sc), nil
}

func (s *Store) DeleteTask(_ context.Context, userID string, taskID primitive.ObjectID) (models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, idx, ok := s.findTaskLocked(userID, taskID)
	if !ok {
		return models.Schedule{}, store.ErrNotFound
	}
	sc := cloneSchedule(s.schedules[key])
	sc.Tasks = append(sc.Tasks[:idx], sc.Tasks[idx+1:]...)
	sc.UpdatedAt = s.now()
	s.schedules[key] = sc
	return cloneSchedule(sc), nil
}

func (s *Store) findTaskLocked(userID string, taskID primitive.ObjectID) (scheduleKey, int, bool) {
	for key, sc := range s.schedules {
		if key.userID != userID {
			continue
		}
		for i, t := range sc.Tasks {
			if t.ID == taskID {
				return key, i, true
			}
		}
	}
	return scheduleKey{}, -1, false
}

func (s *Store) DeleteSchedulesForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.schedules {
		if key.userID == userID {
			delete(s.schedules, key)
		}
	}
	return nil
}

// PostStore implementation ---------------------------------------------------

func (s *Store) CreatePost(_ context.Context, p models.Post) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	s.posts[p.ID] = clonePost(p)
	return clonePost(p), nil
}

func (s *Store) ListPosts(_ context.Context, authorID string) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if authorID != "" && p.UserID != authorID {
			continue
		}
		out = append(out, clonePost(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetPost(_ context.Context, id primitive.ObjectID) (models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return models.Post{}, store.ErrNotFound
	}
	return clonePost(p), nil
}

func (s *Store) ToggleLike(_ context.Context, id primitive.ObjectID, userID string) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return models.Post{}, store.ErrNotFound
	}
	p = clonePost(p)
	likes := models.NewLikeSet(p.Likes)
	likes.Toggle(userID)
	p.Likes = likes.Slice()
	p.UpdatedAt = s.now()
	s.posts[id] = p
	return clonePost(p), nil
}

func (s *Store) AddComment(_ context.Context, id primitive.ObjectID, c models.Comment) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return models.Post{}, store.ErrNotFound
	}
	p = clonePost(p)
	p.Comments = append(p.Comments, c)
	p.UpdatedAt = s.now()
	s.posts[id] = p
	return clonePost(p), nil
}

func (s *Store) DeletePostsByUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, p := range s.posts {
		if p.UserID == userID {
			delete(s.posts, id)
			n++
		}
	}
	return n, nil
}

// MoodStore implementation ---------------------------------------------------

func (s *Store) AddMood(_ context.Context, e models.MoodEntry) (models.MoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = primitive.NewObjectID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	s.moods[e.UserID] = append(s.moods[e.UserID], e)
	return e, nil
}

func (s *Store) ListMoods(_ context.Context, userID string, limit int) ([]models.MoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.moods[userID]
	out := make([]models.MoodEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func (s *Store) DeleteMoodsForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.moods, userID)
	return nil
}

// FitnessStore implementation ------------------------------------------------

func (s *Store) UpsertSnapshot(_ context.Context, snap models.FitnessSnapshot) (models.FitnessSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fitnessKey{snap.UserID, snap.Provider, snap.Date}
	if existing, ok := s.fitness[key]; ok {
		snap.ID = existing.ID
	} else {
		snap.ID = primitive.NewObjectID()
	}
	s.fitness[key] = snap
	return snap, nil
}

func (s *Store) ListSnapshots(_ context.Context, userID string, limit int) ([]models.FitnessSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.FitnessSnapshot
	for key, snap := range s.fitness {
		if key.userID == userID {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date == out[j].Date {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Date > out[j].Date
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) DeleteSnapshotsForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.fitness {
		if key.userID == userID {
			delete(s.fitness, key)
		}
	}
	return nil
}

// ResourceStore implementation -----------------------------------------------

func (s *Store) ListResources(_ context.Context, category string) ([]models.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Resource, 0, len(s.resources))
	for _, r := range s.resources {
		if category == "" || r.Category == category {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// Cloning helpers ------------------------------------------------------------

func cloneUser(u models.User) models.User {
	u.ConnectedAccounts = cloneMap(u.ConnectedAccounts)
	u.FitnessTokens = cloneMap(u.FitnessTokens)
	return u
}

func cloneChat(c models.Chat) models.Chat {
	c.Messages = append([]models.Message(nil), c.Messages...)
	return c
}

func cloneSchedule(sc models.Schedule) models.Schedule {
	sc.Tasks = append([]models.Task(nil), sc.Tasks...)
	return sc
}

func clonePost(p models.Post) models.Post {
	p.Likes = append([]string{}, p.Likes...)
	p.Comments = append([]models.Comment{}, p.Comments...)
	return p
}

func cloneMap[V any](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
