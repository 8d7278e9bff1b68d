package cache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/storepulse/internal/config"
	"github.com/smallbiznis/storepulse/internal/observability/metrics"
	"github.com/smallbiznis/storepulse/internal/source/domain"
	"github.com/smallbiznis/storepulse/internal/source/static"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sample() domain.Result {
	return domain.Result{Tables: static.Tables(), Warnings: []domain.Warning{}}
}

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory(2, time.Minute)
	ctx := context.Background()

	_, ok := m.Get(ctx, "a")
	assert.False(t, ok)

	m.Set(ctx, "a", sample())
	got, ok := m.Get(ctx, "a")
	require.True(t, ok)
	assert.Len(t, got.Tables.Products, 5)

	m.Set(ctx, "b", sample())
	m.Set(ctx, "c", sample())
	assert.Equal(t, 2, m.Len())
	_, ok = m.Get(ctx, "a")
	assert.False(t, ok, "oldest entry should be evicted")
}

func TestMemoryExpires(t *testing.T) {
	m := NewMemory(4, 20*time.Millisecond)
	m.Set(context.Background(), "a", sample())

	assert.Eventually(t, func() bool {
		_, ok := m.Get(context.Background(), "a")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestInstrumentedSkipsDegradedLoads(t *testing.T) {
	pm := metrics.NewPipelineMetrics(prometheus.NewRegistry(), metrics.Config{})
	c := &instrumented{next: NewMemory(4, time.Minute), metrics: pm}
	ctx := context.Background()

	degraded := sample()
	degraded.Warnings = []domain.Warning{{Resource: domain.ResourceCustomers, Message: "boom"}}
	c.Set(ctx, "k", degraded)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	c.Set(ctx, "k", sample())
	_, ok = c.Get(ctx, "k")
	assert.True(t, ok)
}

func TestRedisOutageIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	r := NewRedis(client, time.Minute, zap.NewNop())
	r.Set(context.Background(), "k", sample())
	_, ok := r.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Config{Cache: config.CacheConfig{Backend: config.CacheBackendNone}}
	c, err := New(Params{Config: cfg, Log: zap.NewNop()})
	require.NoError(t, err)
	c.Set(context.Background(), "k", sample())
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)

	_, err = New(Params{Config: config.Config{Cache: config.CacheConfig{Backend: "memcached"}}, Log: zap.NewNop()})
	assert.Error(t, err)
}
