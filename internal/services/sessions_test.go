package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMedia struct {
	joinErr error
	muted   map[string]bool
	closed  []string
}

func (f *fakeMedia) CreateRoom(context.Context, string) error { return nil }

func (f *fakeMedia) Join(_ context.Context, roomID, userID string) (string, error) {
	if f.joinErr != nil {
		return "", f.joinErr
	}
	return "tok-" + userID, nil
}

func (f *fakeMedia) Leave(context.Context, string, string) error { return nil }

func (f *fakeMedia) CloseRoom(_ context.Context, roomID string) error {
	f.closed = append(f.closed, roomID)
	return nil
}

func (f *fakeMedia) ToggleAudio(_ context.Context, _, userID string, muted bool) error {
	if f.muted == nil {
		f.muted = map[string]bool{}
	}
	f.muted[userID] = muted
	return nil
}

func nextEvent(t *testing.T, ch <-chan SessionEvent) SessionEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for session event")
		return SessionEvent{}
	}
}

func TestSessionLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	fm := &fakeMedia{}
	reg := NewSessionRegistry(fm, zap.NewNop())
	defer reg.Close()

	room, err := reg.CreateRoom(ctx, "host", "Evening check-in")
	require.NoError(t, err)
	assert.NotEmpty(t, room.ID)
	assert.Empty(t, room.Participants)

	events, cancel, err := reg.Subscribe(room.ID, "observer")
	require.NoError(t, err)
	defer cancel()

	joined, err := reg.Join(ctx, room.ID, "a")
	require.NoError(t, err)
	assert.Equal(t, "tok-a", joined.MediaToken)
	require.Len(t, joined.Room.Participants, 1)

	ev := nextEvent(t, events)
	assert.Equal(t, EventParticipantJoined, ev.Type)
	assert.Equal(t, "a", ev.UserID)
	assert.Equal(t, room.ID, ev.RoomID)

	_, err = reg.ToggleAudio(ctx, room.ID, "a", true)
	require.NoError(t, err)
	assert.True(t, fm.muted["a"])
	ev = nextEvent(t, events)
	assert.Equal(t, EventAudioToggled, ev.Type)
	assert.True(t, ev.Muted)

	require.NoError(t, reg.Post(room.ID, "a", "hi all"))
	ev = nextEvent(t, events)
	assert.Equal(t, EventMessage, ev.Type)
	assert.Equal(t, "hi all", ev.Text)

	left, err := reg.Leave(ctx, room.ID, "a")
	require.NoError(t, err)
	assert.Empty(t, left.Participants)
	ev = nextEvent(t, events)
	assert.Equal(t, EventParticipantLeft, ev.Type)

	_, err = reg.Leave(ctx, room.ID, "a")
	require.NoError(t, err)

	rooms := reg.ListRooms(ctx)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Evening check-in", rooms[0].Name)
}

func TestSessionRules(t *testing.T) {
	ctx := context.Background()
	fm := &fakeMedia{}
	reg := NewSessionRegistry(fm, zap.NewNop())
	defer reg.Close()

	_, err := reg.CreateRoom(ctx, "host", " ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = reg.Join(ctx, "missing", "a")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	room, err := reg.CreateRoom(ctx, "host", "Support")
	require.NoError(t, err)

	err = reg.Post(room.ID, "outsider", "hello")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = reg.ToggleAudio(ctx, room.ID, "outsider", true)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	fm.joinErr = errors.New("gateway down")
	_, err = reg.Join(ctx, room.ID, "a")
	assert.True(t, apperr.Is(err, apperr.KindUpstream))

	got, err := reg.GetRoom(room.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Participants)
}

func TestSessionCloseEndsSubscriptions(t *testing.T) {
	ctx := context.Background()
	reg := NewSessionRegistry(nil, zap.NewNop())

	room, err := reg.CreateRoom(ctx, "host", "Late night")
	require.NoError(t, err)
	events, cancel, err := reg.Subscribe(room.ID, "a")
	require.NoError(t, err)

	reg.Close()
	_, ok := <-events
	assert.False(t, ok)
	cancel()

	assert.Empty(t, reg.ListRooms(ctx))
	_, _, err = reg.Subscribe(room.ID, "a")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSessionEndsWhenLastParticipantLeaves(t *testing.T) {
	ctx := context.Background()
	fm := &fakeMedia{}
	reg := NewSessionRegistry(fm, zap.NewNop())
	defer reg.Close()

	room, err := reg.CreateRoom(ctx, "host", "Morning circle")
	require.NoError(t, err)
	_, err = reg.Join(ctx, room.ID, "a")
	require.NoError(t, err)
	_, err = reg.Join(ctx, room.ID, "b")
	require.NoError(t, err)

	_, err = reg.Leave(ctx, room.ID, "a")
	require.NoError(t, err)
	_, err = reg.GetRoom(room.ID)
	require.NoError(t, err)
	assert.Empty(t, fm.closed)

	left, err := reg.Leave(ctx, room.ID, "b")
	require.NoError(t, err)
	assert.Empty(t, left.Participants)
	assert.Equal(t, []string{room.ID}, fm.closed)

	_, err = reg.GetRoom(room.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Empty(t, reg.ListRooms(ctx))

	_, err = reg.Leave(ctx, room.ID, "b")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestIdleSessionsExpire(t *testing.T) {
	ctx := context.Background()
	fm := &fakeMedia{}
	reg := NewSessionRegistry(fm, zap.NewNop())
	defer reg.Close()
	now := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	unused, err := reg.CreateRoom(ctx, "host", "Nobody came")
	require.NoError(t, err)
	watched, err := reg.CreateRoom(ctx, "host", "Watched")
	require.NoError(t, err)
	_, cancel, err := reg.Subscribe(watched.ID, "observer")
	require.NoError(t, err)

	now = now.Add(emptyRoomGrace - time.Second)
	assert.Len(t, reg.ListRooms(ctx), 2)

	now = now.Add(time.Second)
	rooms := reg.ListRooms(ctx)
	require.Len(t, rooms, 1)
	assert.Equal(t, watched.ID, rooms[0].ID)
	assert.Equal(t, []string{unused.ID}, fm.closed)

	// The grace period restarts when the last subscriber goes.
	cancel()
	now = now.Add(emptyRoomGrace - time.Second)
	assert.Len(t, reg.ListRooms(ctx), 1)
	now = now.Add(time.Second)
	assert.Empty(t, reg.ListRooms(ctx))
	assert.Equal(t, []string{unused.ID, watched.ID}, fm.closed)
}
