package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/smallbiznis/storepulse/internal/source/domain"
)

const (
	defaultSize = 32
	defaultTTL  = 5 * time.Minute
)

// Memory is a size-bounded in-process cache with per-entry expiry.
type Memory struct {
	lru *expirable.LRU[string, domain.Result]
}

func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = defaultSize
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Memory{lru: expirable.NewLRU[string, domain.Result](size, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string) (domain.Result, bool) {
	return m.lru.Get(key)
}

func (m *Memory) Set(_ context.Context, key string, result domain.Result) {
	m.lru.Add(key, result)
}

func (m *Memory) Len() int {
	return m.lru.Len()
}
