package middleware

import (
	"net/http"
	"strconv"

	"github.com/AnshRaj112/mindhaven-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

// Each chat send costs a response backend call, so it is limited per user:
// 20 per minute with a burst of 5. Requests without an authenticated user
// fall back to the client IP.
const (
	chatSendPerMinute = 20
	chatSendBurst     = 5
)

// ChatSendRateLimit must run after Authenticator.Require.
func ChatSendRateLimit(trustProxy bool) func(http.Handler) http.Handler {
	set := newLimiterSet(rate.Limit(float64(chatSendPerMinute)/60), chatSendBurst, limiterTTL)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := UserIDFromContext(r.Context())
			if ok {
				key = "user:" + key
			} else {
				key = "ip:" + clientip.FromRequest(r, trustProxy)
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(chatSendPerMinute))
			if !set.allow(key) {
				w.Header().Set("X-RateLimit-Remaining", "0")
				deny(w, http.StatusTooManyRequests, "You're sending messages too quickly. Take a breath and try again in a moment.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
