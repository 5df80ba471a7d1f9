package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a small JSON cache over Redis used for query-layer results that
// display widgets poll frequently. All methods are best-effort: a cache
// failure never fails the caller.
type Cache struct {
	client *redis.Client
}

// New creates a Redis-backed cache and verifies the connection.
func New(redisHost, redisPort string) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", redisHost, redisPort),
		Password:     "", // no password
		DB:           0,  // default DB
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// GetJSON loads a cached value into v. Returns false on miss or any error.
func (c *Cache) GetJSON(ctx context.Context, key string, v interface{}) bool {
	result := c.client.Get(ctx, key)
	if result.Err() != nil {
		return false
	}
	if err := json.Unmarshal([]byte(result.Val()), v); err != nil {
		return false
	}
	return true
}

// SetJSON stores v under key with a TTL. Errors are dropped: the database
// remains the source of truth.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, string(data), ttl)
}
