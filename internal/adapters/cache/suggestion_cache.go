package cache

import (
	"context"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/platform/obs"
	"itinerary-planner-service/internal/ports"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultSuggestionTTL = 24 * time.Hour

// A cache error is treated as a miss by the advisor.
const (
	cacheDialTimeout = 2 * time.Second
	cacheIOTimeout   = 500 * time.Millisecond
	cachePoolSize    = 10
)

// Connect opens a Redis client for the suggestion cache and pings it.
// Explicit timeouts in redisURL take precedence over the cache defaults.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("suggestion cache: parse redis url: %w", err)
	}

	u, _ := url.Parse(redisURL)
	q := u.Query()
	if !q.Has("dial_timeout") {
		opts.DialTimeout = cacheDialTimeout
	}
	if !q.Has("read_timeout") {
		opts.ReadTimeout = cacheIOTimeout
	}
	if !q.Has("write_timeout") {
		opts.WriteTimeout = cacheIOTimeout
	}
	if !q.Has("pool_size") {
		opts.PoolSize = cachePoolSize
	}
	if !q.Has("max_retries") {
		opts.MaxRetries = 1
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, cacheDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("suggestion cache: ping redis: %w", err)
	}

	return client, nil
}

// RedisSuggestionCache stores generated spot answers in Redis with a TTL.
// Subjects are case-insensitive.
type RedisSuggestionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSuggestionCache(client *redis.Client, ttl time.Duration) *RedisSuggestionCache {
	if ttl <= 0 {
		ttl = DefaultSuggestionTTL
	}
	return &RedisSuggestionCache{client: client, ttl: ttl}
}

func key(kind, subject string) string {
	return "suggestion:" + kind + ":" + strings.ToLower(strings.TrimSpace(subject))
}

// Get returns ok=false on a miss; a miss is not an error.
func (c *RedisSuggestionCache) Get(ctx context.Context, kind, subject string) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "suggestion.cache.Get")(&err)

	val, err := c.client.Get(ctx, key(kind, subject)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("suggestion cache get %s/%s: %w", kind, subject, err)
	}

	return val, true, nil
}

func (c *RedisSuggestionCache) Set(ctx context.Context, kind, subject, value string) error {
	if strings.TrimSpace(subject) == "" {
		return errors.New("suggestion cache set: subject must not be empty")
	}

	if err := c.client.Set(ctx, key(kind, subject), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("suggestion cache set %s/%s: %w", kind, subject, err)
	}
	return nil
}

func (c *RedisSuggestionCache) Delete(ctx context.Context, kind, subject string) error {
	if err := c.client.Del(ctx, key(kind, subject)).Err(); err != nil {
		return fmt.Errorf("suggestion cache delete %s/%s: %w", kind, subject, err)
	}
	return nil
}

var _ ports.SuggestionCache = (*RedisSuggestionCache)(nil)
