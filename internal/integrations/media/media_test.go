package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayJoinReturnsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rooms/room-1/participants", r.URL.Path)

		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "uid-1", body["identity"])

		_, _ = w.Write([]byte(`{"token":"media-token"}`))
	}))
	defer srv.Close()

	tok, err := NewGateway(srv.URL, "key").Join(context.Background(), "room-1", "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "media-token", tok)
}

func TestGatewayErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"room not found"}`))
	}))
	defer srv.Close()

	err := NewGateway(srv.URL, "key").Leave(context.Background(), "room-1", "uid-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "room not found")
}

func TestGatewayCloseRoom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/rooms/room-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	assert.NoError(t, NewGateway(srv.URL, "key").CloseRoom(context.Background(), "room-1"))
}

func TestNopProvider(t *testing.T) {
	var p Provider = Nop{}
	tok, err := p.Join(context.Background(), "r", "u")
	assert.NoError(t, err)
	assert.Empty(t, tok)
}
