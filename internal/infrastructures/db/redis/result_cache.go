package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	derr "github.com/striker104/QRT-meeting-in-the-middle/internal/domain/errors"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
)

const keyPrefix = "meetpoint:results:"

type ResultCache struct {
	redis *redis.Client
}

func NewResultCache(redis *redis.Client) *ResultCache {
	return &ResultCache{redis: redis}
}

func (c *ResultCache) Get(ctx context.Context, key string) ([]models.OptimizationResult, error) {
	data, err := c.redis.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, derr.ErrResultNotFound
		}
		return nil, fmt.Errorf("redis get results: %w", err)
	}

	var results []models.OptimizationResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("unmarshal cached results: %w", err)
	}

	return results, nil
}

func (c *ResultCache) Set(ctx context.Context, key string, results []models.OptimizationResult, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results for cache: %w", err)
	}

	if err := c.redis.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set results: %w", err)
	}

	return nil
}
