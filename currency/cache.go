package currency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateCache shares a fetched rate across processes. A cache is optional; the
// service keeps its own in-memory copy either way.
type RateCache interface {
	Get(ctx context.Context) (float64, error)
	Set(ctx context.Context, rate float64) error
}

var ErrCacheMiss = errors.New("rate cache miss")

const cacheKey = "currency:usd_inr_rate"

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 30 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context) (float64, error) {
	val, err := r.client.Get(ctx, cacheKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}

	rate, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cached rate failed: %w", err)
	}
	return rate, nil
}

func (r *RedisCache) Set(ctx context.Context, rate float64) error {
	if err := r.client.Set(ctx, cacheKey, strconv.FormatFloat(rate, 'f', -1, 64), r.baseTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// MemoryCache is an in-process RateCache for tests and single-node runs.
type MemoryCache struct {
	rate float64
	set  bool
}

func (m *MemoryCache) Get(ctx context.Context) (float64, error) {
	if !m.set {
		return 0, ErrCacheMiss
	}
	return m.rate, nil
}

func (m *MemoryCache) Set(ctx context.Context, rate float64) error {
	m.rate = rate
	m.set = true
	return nil
}
