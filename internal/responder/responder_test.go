package responder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShapes(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		reply   string
		emotion string
	}{
		{"flat", `{"reply":"I hear you","emotion":"sadness"}`, "I hear you", "sadness"},
		{"nested emotion", `{"response":"Take a breath","emotion":{"label":"fear","score":0.8}}`, "Take a breath", "fear"},
		{"gemini", `{"candidates":[{"content":{"parts":[{"text":"You are not alone"}]}}]}`, "You are not alone", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Parse([]byte(tc.payload))
			require.True(t, res.OK)
			assert.Equal(t, tc.reply, res.ReplyText)
			assert.Equal(t, tc.emotion, res.Emotion)
		})
	}
}

func TestParseFailures(t *testing.T) {
	assert.Equal(t, ErrMalformed, Parse([]byte(`not json`)).Kind)
	assert.Equal(t, ErrMalformed, Parse([]byte(`{"reply":"   "}`)).Kind)
	assert.Equal(t, ErrMalformed, Parse([]byte(`{"reply":42}`)).Kind)
}

func TestClientSendsMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "I feel anxious", body["message"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reply":"That sounds hard","emotion":"fear"}`))
	}))
	defer srv.Close()

	res := NewClient(srv.URL, time.Second).Respond(context.Background(), "I feel anxious")
	require.True(t, res.OK)
	assert.Equal(t, "That sounds hard", res.ReplyText)
	assert.Equal(t, "fear", res.Emotion)
}

func TestClientDoesNotRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	res := NewClient(srv.URL, time.Second).Respond(context.Background(), "hi")
	assert.False(t, res.OK)
	assert.Equal(t, ErrBadStatus, res.Kind)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"reply":"late"}`))
	}))
	defer srv.Close()

	res := NewClient(srv.URL, 20*time.Millisecond).Respond(context.Background(), "hi")
	assert.False(t, res.OK)
	assert.Equal(t, ErrTimeout, res.Kind)
}
