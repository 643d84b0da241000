package newsletter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contacts", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))

		var body struct {
			Email   string  `json:"email"`
			ListIDs []int64 `json:"listIds"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body.Email)
		assert.Equal(t, []int64{7}, body.ListIDs)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "secret", "7")
	require.NoError(t, err)
	assert.NoError(t, c.Subscribe(context.Background(), "ada@example.com", nil))
}

func TestSubscribeDuplicateIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"duplicate_parameter","message":"Contact already exist"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "secret", "7")
	require.NoError(t, err)
	assert.NoError(t, c.Subscribe(context.Background(), "ada@example.com", nil))
}

func TestSubscribeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized","message":"Key not found"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "bad", "7")
	require.NoError(t, err)
	err = c.Subscribe(context.Background(), "ada@example.com", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Key not found")

	_, err = NewClient(srv.URL, "k", "not-a-number")
	assert.Error(t, err)
}
