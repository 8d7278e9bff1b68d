package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/storepulse/internal/source/domain"
	"go.uber.org/zap"
)

const redisKeyPrefix = "storepulse:snapshot:"

// Redis stores snapshots as JSON with a TTL. Redis errors are logged and
// treated as misses so a cache outage never fails a load.
type Redis struct {
	client redis.Cmdable
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedis(client redis.Cmdable, ttl time.Duration, log *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{client: client, ttl: ttl, log: log}
}

func (r *Redis) Get(ctx context.Context, key string) (domain.Result, bool) {
	payload, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("redis snapshot get failed", zap.String("key", key), zap.Error(err))
		}
		return domain.Result{}, false
	}
	var res domain.Result
	if err := json.Unmarshal(payload, &res); err != nil {
		r.log.Warn("redis snapshot decode failed", zap.String("key", key), zap.Error(err))
		return domain.Result{}, false
	}
	res.Tables = res.Tables.Normalize()
	if res.Warnings == nil {
		res.Warnings = []domain.Warning{}
	}
	return res, true
}

func (r *Redis) Set(ctx context.Context, key string, result domain.Result) {
	payload, err := json.Marshal(result)
	if err != nil {
		r.log.Warn("redis snapshot encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, payload, r.ttl).Err(); err != nil {
		r.log.Warn("redis snapshot set failed", zap.String("key", key), zap.Error(err))
	}
}
