package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
	"github.com/AnshRaj112/mindhaven-backend/internal/identity"
	"go.uber.org/zap"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	claimsKey
)

// Authenticator gates routes on a verified identity provider ID token.
type Authenticator struct {
	verifier identity.Verifier
	log      *zap.Logger
}

func NewAuthenticator(v identity.Verifier, log *zap.Logger) *Authenticator {
	return &Authenticator{verifier: v, log: log}
}

// Require rejects the request with 401 unless it carries a valid bearer
// token, or 500 when the signing keys cannot be fetched. On success the token
// subject and claims are stored in the context.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			deny(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		claims, err := a.verifier.Verify(r.Context(), token)
		if errors.Is(err, identity.ErrKeysUnavailable) {
			e := apperr.Upstream("identity signing keys unavailable", err)
			a.log.Error(e.Message, zap.String("path", r.URL.Path), zap.Error(err))
			deny(w, e.HTTPStatus(), e.PublicMessage())
			return
		}
		if err != nil {
			a.log.Debug("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
			deny(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		ctx = WithUserID(ctx, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// WebSocket handshakes, so upgrade requests may pass ?token= instead.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return strings.TrimSpace(r.URL.Query().Get("token"))
	}
	return ""
}

// WithUserID stores the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok && uid != ""
}

func ClaimsFromContext(ctx context.Context) (*identity.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*identity.Claims)
	return c, ok
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}
