package services

import (
	"context"
	"os"
	"testing"

	"github.com/AnshRaj112/mindhaven-backend/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRedisCache(t *testing.T) (*RedisHistoryCache, string) {
	uri := os.Getenv("REDIS_URI")
	if uri == "" {
		t.Skip("REDIS_URI not set; skipping integration test")
	}
	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	t.Cleanup(func() { _ = rdb.Close() })

	uid := "test-" + uuid.NewString()
	t.Cleanup(func() { rdb.Del(context.Background(), chatHistoryKey(uid), chatGenKey(uid)) })
	return NewRedisHistoryCache(rdb, zap.NewNop()), uid
}

func TestRedisHistoryCacheDropsStaleWarm(t *testing.T) {
	c, uid := setupRedisCache(t)
	ctx := context.Background()
	old := []models.Message{{Text: "hi", Sender: models.SenderSystem}}

	_, gen, ok := c.Get(ctx, uid)
	require.False(t, ok)
	assert.Equal(t, int64(0), gen)

	c.Invalidate(ctx, uid)
	c.Set(ctx, uid, gen, old)
	_, newGen, ok := c.Get(ctx, uid)
	assert.False(t, ok)
	assert.Equal(t, gen+1, newGen)

	c.Set(ctx, uid, newGen, old)
	got, _, ok := c.Get(ctx, uid)
	require.True(t, ok)
	assert.Equal(t, "hi", got[0].Text)
}

func TestNopHistoryCacheNeverHits(t *testing.T) {
	var c NopHistoryCache
	c.Set(context.Background(), "u1", 0, []models.Message{{Text: "x"}})
	_, gen, ok := c.Get(context.Background(), "u1")
	assert.False(t, ok)
	assert.Equal(t, NoGeneration, gen)
}
