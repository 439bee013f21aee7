package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ai-advisor/server/internal/advisor/model"
	errx "github.com/ai-advisor/server/internal/core/error"
	logx "github.com/ai-advisor/server/pkg/logger"
)

// commander is the subset of redis.Cmdable used by the cache.
type commander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type RedisReplyCache struct {
	rdb commander
	ttl time.Duration
}

func NewRedisReplyCache(rdb redis.Cmdable, ttl time.Duration) *RedisReplyCache {
	return &RedisReplyCache{rdb: rdb, ttl: ttl}
}

func (c *RedisReplyCache) replyKey(key string) string {
	return fmt.Sprintf("advisor:reply:%s", key)
}

func (c *RedisReplyCache) Get(ctx context.Context, key string) (*model.AskResult, bool, error) {
	k := c.replyKey(key)

	s, err := c.rdb.Get(ctx, k).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		logx.Error().Err(err).Str("key", k).Msg("failed to read cached reply from redis")
		return nil, false, errx.WrapRedis(err)
	}

	var res model.AskResult
	if err := json.Unmarshal([]byte(s), &res); err != nil {
		logx.Warn().Err(err).Str("key", k).Msg("discarding undecodable cached reply")
		return nil, false, nil
	}
	return &res, true, nil
}

func (c *RedisReplyCache) Put(ctx context.Context, key string, result *model.AskResult) error {
	if result == nil {
		return nil
	}
	b, err := json.Marshal(result)
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to marshal reply")
		return fmt.Errorf("marshal reply: %w", err)
	}
	k := c.replyKey(key)

	if err := c.rdb.Set(ctx, k, b, c.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", k).Msg("failed to store reply in redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.ReplyCache = (*RedisReplyCache)(nil)
