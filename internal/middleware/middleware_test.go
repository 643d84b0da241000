package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/internal/identity"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeVerifier map[string]string

func (f fakeVerifier) Verify(_ context.Context, token string) (*identity.Claims, error) {
	uid, ok := f[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &identity.Claims{Email: uid + "@example.com", RegisteredClaims: jwt.RegisteredClaims{Subject: uid}}, nil
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())
	claims, _ := ClaimsFromContext(r.Context())
	w.Write([]byte(uid + "|" + claims.Email))
}

func TestRequireAuth(t *testing.T) {
	auth := NewAuthenticator(fakeVerifier{"good": "uid-1"}, zap.NewNop())
	h := auth.Require(http.HandlerFunc(echoUser))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"ok", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/chat/uid-1", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "uid-1|uid-1@example.com", rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"success":false`)
			}
		})
	}
}

func TestRequireAuthQueryTokenOnlyForWebsocket(t *testing.T) {
	auth := NewAuthenticator(fakeVerifier{"good": "uid-1"}, zap.NewNop())
	h := auth.Require(http.HandlerFunc(echoUser))

	req := httptest.NewRequest(http.MethodGet, "/ws/sessions/x?token=good", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/ws/sessions/x?token=good", nil)
	req.Header.Set("Upgrade", "websocket")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthKeysUnavailable(t *testing.T) {
	certs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer certs.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	keys := identity.NewCertKeySet(certs.URL, zap.NewNop())
	auth := NewAuthenticator(identity.NewFirebaseVerifier("mindhaven-test", keys), zap.New(core))
	h := auth.Require(http.HandlerFunc(echoUser))

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   "uid-1",
		Issuer:    identity.Issuer("mindhaven-test"),
		Audience:  jwt.ClaimStrings{"mindhaven-test"},
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	tok.Header["kid"] = "k1"
	signed, err := tok.SignedString(key)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/uid-1", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.NotContains(t, rec.Body.String(), "503")

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "identity signing keys unavailable", entries[0].Message)
}

func TestSecurityHeadersAndHostCheck(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := SecurityHeaders(HostCheck("api.mindhaven.app")(ok))

	req := httptest.NewRequest(http.MethodGet, "http://api.mindhaven.app:443/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	req = httptest.NewRequest(http.MethodGet, "http://evil.example/health", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLoginRateLimitOnlyOnLogin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := LoginRateLimit(false)(ok)

	hit := func(path string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "203.0.113.9:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < loginRateLimitBurst; i++ {
		assert.Equal(t, http.StatusOK, hit("/api/users/login"))
	}
	assert.Equal(t, http.StatusTooManyRequests, hit("/api/users/login"))
	assert.Equal(t, http.StatusOK, hit("/api/posts"))
}

func TestChatSendRateLimitPerUser(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := ChatSendRateLimit(false)(ok)

	send := func(uid string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/chat/"+uid, nil)
		req = req.WithContext(WithUserID(req.Context(), uid))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < chatSendBurst; i++ {
		require.Equal(t, http.StatusOK, send("a"))
	}
	assert.Equal(t, http.StatusTooManyRequests, send("a"))
	assert.Equal(t, http.StatusOK, send("b"))
}

func TestRedisRateLimitDisabledWithoutClient(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := RedisRateLimit(nil, false, zap.NewNop())(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRequestLoggerUsesRoutePattern(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := chi.NewRouter()
	r.Use(RequestLogger(zap.New(core)))
	r.Get("/api/chat/{userId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/uid-9", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/chat/{userId}", fields["route"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
}
