package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"smartcloset/internal/weather"
)

// WeatherCache keeps recent provider observations in Redis so repeated
// lookups for the same place within the TTL skip the external API.
type WeatherCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewWeatherCache(client *redisv9.Client, ttl time.Duration) *WeatherCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &WeatherCache{client: client, ttl: ttl}
}

func (c *WeatherCache) Get(ctx context.Context, key string) (*weather.Observation, bool, error) {
	raw, err := c.client.Get(ctx, c.cacheKey(key)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get weather failed: %w", err)
	}

	var obs weather.Observation
	if err := json.Unmarshal([]byte(raw), &obs); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached weather failed: %w", err)
	}
	return &obs, true, nil
}

func (c *WeatherCache) Set(ctx context.Context, key string, obs *weather.Observation) error {
	payload, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("marshal weather cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.cacheKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set weather failed: %w", err)
	}
	return nil
}

func (c *WeatherCache) cacheKey(key string) string {
	return "weather:current:" + key
}
