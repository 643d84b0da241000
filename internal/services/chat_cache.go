package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	chatHistoryKeyPrefix = "chat:user:"
	chatHistoryKeySuffix = ":history"
	chatGenKeySuffix     = ":gen"
	chatHistoryTTL       = 1 * time.Hour
	chatGenTTL           = 24 * time.Hour
)

// NoGeneration is returned by Get when the generation could not be read.
// Set ignores it.
const NoGeneration int64 = -1

var errStaleHistory = errors.New("chat cache: generation moved")

func chatHistoryKey(userID string) string {
	return chatHistoryKeyPrefix + userID + chatHistoryKeySuffix
}

func chatGenKey(userID string) string {
	return chatHistoryKeyPrefix + userID + chatGenKeySuffix
}

// HistoryCache holds a read-through copy of a user's chat history. Cache
// failures are never surfaced to callers; the store stays the source of truth.
//
// Every Invalidate bumps the user's generation. Get reports the generation it
// saw and Set only stores when it is still current, so a read that raced a
// write cannot put the pre-write history back.
type HistoryCache interface {
	Get(ctx context.Context, userID string) (msgs []models.Message, gen int64, ok bool)
	Set(ctx context.Context, userID string, gen int64, msgs []models.Message)
	Invalidate(ctx context.Context, userID string)
}

// NopHistoryCache is used when Redis is not configured.
type NopHistoryCache struct{}

func (NopHistoryCache) Get(context.Context, string) ([]models.Message, int64, bool) {
	return nil, NoGeneration, false
}
func (NopHistoryCache) Set(context.Context, string, int64, []models.Message) {}
func (NopHistoryCache) Invalidate(context.Context, string) {}

// RedisHistoryCache stores the whole history as one JSON value per user, next
// to an integer generation key.
type RedisHistoryCache struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewRedisHistoryCache(rdb *redis.Client, log *zap.Logger) *RedisHistoryCache {
	return &RedisHistoryCache{rdb: rdb, log: log}
}

func (c *RedisHistoryCache) Get(ctx context.Context, userID string) ([]models.Message, int64, bool) {
	var data, gen *redis.StringCmd
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		data = pipe.Get(ctx, chatHistoryKey(userID))
		gen = pipe.Get(ctx, chatGenKey(userID))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn("chat cache read failed", zap.String("user_id", userID), zap.Error(err))
		return nil, NoGeneration, false
	}

	g, err := gen.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, NoGeneration, false
	}
	raw, err := data.Bytes()
	if err != nil {
		return nil, g, false
	}
	var msgs []models.Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, g, false
	}
	return msgs, g, true
}

// Set warms the cache after a store read made at generation gen.
func (c *RedisHistoryCache) Set(ctx context.Context, userID string, gen int64, msgs []models.Message) {
	if gen == NoGeneration {
		return
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return
	}

	genKey := chatGenKey(userID)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleHistory
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, chatHistoryKey(userID), data, chatHistoryTTL)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleHistory), errors.Is(err, redis.TxFailedErr):
		c.log.Debug("chat cache warm skipped; history changed", zap.String("user_id", userID))
	default:
		c.log.Warn("chat cache warm failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// Invalidate drops the cached history and bumps the generation. Called after
// every write.
func (c *RedisHistoryCache) Invalidate(ctx context.Context, userID string) {
	genKey := chatGenKey(userID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, chatGenTTL)
		pipe.Del(ctx, chatHistoryKey(userID))
		return nil
	})
	if err != nil {
		c.log.Warn("chat cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}
