package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bstn/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	searchGenerationKey = "search:gen"
	searchKeyPrefix     = "search:"
	rateLimitKeyPrefix  = "rate_limit:booking:"
)

// RedisCacheRepository keeps stay search results and booking rate-limit
// counters in Redis.
type RedisCacheRepository struct {
	client *redis.Client
}

// NewRedisClient creates a Redis client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisCacheRepository(client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{client: client}
}

func (r *RedisCacheRepository) Generation(ctx context.Context) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	gen, err := r.client.Get(ctx, searchGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get search generation: %w", err)
	}
	return gen, nil
}

func (r *RedisCacheRepository) BumpGeneration(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Incr(ctx, searchGenerationKey).Err(); err != nil {
		return fmt.Errorf("failed to bump search generation: %w", err)
	}
	return nil
}

func (r *RedisCacheRepository) GetSearch(ctx context.Context, key string) ([]byte, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, searchKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get search result: %w", err)
	}
	return val, true, nil
}

func (r *RedisCacheRepository) SetSearch(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Set(ctx, searchKeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set search result: %w", err)
	}
	return nil
}

// CheckRateLimit counts one attempt for the actor in a fixed window and
// reports whether it is within limit.
func (r *RedisCacheRepository) CheckRateLimit(ctx context.Context, actorID int64, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("%s%d", rateLimitKeyPrefix, actorID)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}
	return count <= int64(limit), nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis client if present.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
