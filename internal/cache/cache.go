package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/storepulse/internal/config"
	"github.com/smallbiznis/storepulse/internal/observability/metrics"
	"github.com/smallbiznis/storepulse/internal/source/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cache",
	fx.Provide(New),
)

// SnapshotCache holds recent source loads keyed by domain.Request.CacheKey.
// Only clean loads (no warnings) are stored.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (domain.Result, bool)
	Set(ctx context.Context, key string, result domain.Result)
}

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
	Metrics   *metrics.PipelineMetrics `optional:"true"`
}

// New selects the backend named by CACHE_BACKEND.
func New(p Params) (SnapshotCache, error) {
	cfg := p.Config.Cache
	log := p.Log.Named("cache")

	var backend SnapshotCache
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case config.CacheBackendMemory, "":
		backend = NewMemory(cfg.Size, cfg.TTL)
	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if p.Lifecycle != nil {
			p.Lifecycle.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					if err := client.Ping(ctx).Err(); err != nil {
						log.Warn("redis snapshot cache unreachable, loads will bypass it", zap.Error(err))
					}
					return nil
				},
				OnStop: func(ctx context.Context) error {
					return client.Close()
				},
			})
		}
		backend = NewRedis(client, cfg.TTL, log)
	case config.CacheBackendNone:
		backend = None{}
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}

	log.Info("snapshot cache ready", zap.String("backend", cfg.Backend), zap.Duration("ttl", cfg.TTL))
	return &instrumented{next: backend, metrics: p.Metrics}, nil
}

type instrumented struct {
	next    SnapshotCache
	metrics *metrics.PipelineMetrics
}

func (c *instrumented) Get(ctx context.Context, key string) (domain.Result, bool) {
	res, ok := c.next.Get(ctx, key)
	c.metrics.IncCacheLookup(ok)
	return res, ok
}

func (c *instrumented) Set(ctx context.Context, key string, result domain.Result) {
	if len(result.Warnings) > 0 {
		return
	}
	c.next.Set(ctx, key, result)
}

// None never stores anything.
type None struct{}

func (None) Get(context.Context, string) (domain.Result, bool) { return domain.Result{}, false }

func (None) Set(context.Context, string, domain.Result) {}
