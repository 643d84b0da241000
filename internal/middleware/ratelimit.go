package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/pkg/clientip"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	RateLimitWindow      = 120 * time.Second
	RateLimitMaxRequests = 120
	RateLimitKeyPrefix   = "ratelimit:"
	BlockedIPKeyPrefix   = "blocked_ip:"
	BlockedIPDuration    = 15 * time.Minute

	redisLimiterTimeout = 200 * time.Millisecond
)

// RedisRateLimit is a fixed-window per-IP limiter shared across instances.
// An IP that exceeds the window is blocked for BlockedIPDuration. Redis
// failures let the request through. A nil client disables the limiter.
func RedisRateLimit(rdb *redis.Client, trustProxy bool, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rdb == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientip.FromRequest(r, trustProxy)
			ctx, cancel := context.WithTimeout(r.Context(), redisLimiterTimeout)
			defer cancel()

			blockedKey := BlockedIPKeyPrefix + ip
			blocked, err := rdb.Exists(ctx, blockedKey).Result()
			if err == nil && blocked > 0 {
				deny(w, http.StatusTooManyRequests, "Your IP has been temporarily blocked due to excessive requests. Please try again later.")
				return
			}

			key := RateLimitKeyPrefix + ip
			pipe := rdb.TxPipeline()
			incr := pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, RateLimitWindow)
			if _, err := pipe.Exec(ctx); err != nil {
				log.Warn("rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			count := int(incr.Val())
			if count > RateLimitMaxRequests {
				if err := rdb.Set(ctx, blockedKey, "1", BlockedIPDuration).Err(); err != nil {
					log.Warn("failed to block ip", zap.Error(err))
				}
				log.Info("ip rate limited", zap.String("ip", ip), zap.Int("count", count))
				w.Header().Set("Retry-After", strconv.Itoa(int(BlockedIPDuration.Seconds())))
				deny(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(RateLimitMaxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(RateLimitMaxRequests-count))
			next.ServeHTTP(w, r)
		})
	}
}
