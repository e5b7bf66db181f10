package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"pizzapos/internal/domain"
)

const generationKey = "dashboard:gen"

// RedisDashboardCache namespaces entries under a generation counter so that
// bumping the counter orphans every older entry until its TTL expires.
type RedisDashboardCache struct {
	client *redis.Client
}

func NewRedisDashboardCache(addr string, password string, db int) *RedisDashboardCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisDashboardCache{client: client}
}

func (c *RedisDashboardCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisDashboardCache) Close() error {
	return c.client.Close()
}

func (c *RedisDashboardCache) GetStats(ctx context.Context, period string) (*domain.DashboardStats, bool, error) {
	key, err := c.statsKey(ctx, period)
	if err != nil {
		return nil, false, err
	}
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var stats domain.DashboardStats
	if err := json.Unmarshal([]byte(val), &stats); err != nil {
		return nil, false, err
	}
	return &stats, true, nil
}

func (c *RedisDashboardCache) SetStats(ctx context.Context, period string, value *domain.DashboardStats, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	key, err := c.statsKey(ctx, period)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisDashboardCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}

func (c *RedisDashboardCache) statsKey(ctx context.Context, period string) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		gen = 0
	} else if err != nil {
		return "", err
	}
	return statsKey(gen, period), nil
}

func statsKey(gen int64, period string) string {
	return fmt.Sprintf("dashboard:stats:%d:%s", gen, period)
}
