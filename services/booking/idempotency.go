package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carhire/models"
	"carhire/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// idemTTL is how long a completed create is replayable from the fast path.
// The booking repository remains the durable backstop after expiry.
const idemTTL = 24 * time.Hour

// IdempotencyCache replays the stored outcome of a completed booking create
// so a retried request never reaches the supplier twice.
type IdempotencyCache interface {
	Get(ctx context.Context, agentID, key string) (*models.BookingRecord, bool)
	Put(ctx context.Context, agentID, key string, rec *models.BookingRecord)
}

// RedisIdempotencyCache stores completed creates as JSON blobs in the
// dedicated idempotency Redis database.
type RedisIdempotencyCache struct {
	Client *redis.Client
}

// NewRedisIdempotencyCache wraps the process-wide idempotency client.
func NewRedisIdempotencyCache() *RedisIdempotencyCache {
	return &RedisIdempotencyCache{Client: utils.GetIdemCacheClient()}
}

func idemCacheKey(agentID, key string) string {
	return fmt.Sprintf("idem:%s:%s", agentID, key)
}

func (c *RedisIdempotencyCache) Get(ctx context.Context, agentID, key string) (*models.BookingRecord, bool) {
	raw, err := c.Client.Get(ctx, idemCacheKey(agentID, key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			utils.GetLogger().Warn("idempotency cache read failed",
				zap.String("agentID", agentID), zap.Error(err))
		}
		return nil, false
	}
	var rec models.BookingRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		utils.GetLogger().Warn("idempotency cache holds malformed record",
			zap.String("agentID", agentID), zap.Error(err))
		return nil, false
	}
	return &rec, true
}

func (c *RedisIdempotencyCache) Put(ctx context.Context, agentID, key string, rec *models.BookingRecord) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, idemCacheKey(agentID, key), raw, idemTTL).Err(); err != nil {
		utils.GetLogger().Warn("idempotency cache write failed",
			zap.String("agentID", agentID), zap.Error(err))
	}
}
