package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	productCacheTTL = 10 * time.Minute
	unreadCountTTL  = 5 * time.Minute
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// CacheProduct stores a serialized product detail
func (c *Client) CacheProduct(ctx context.Context, productID int64, detail interface{}) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(productID), data, productCacheTTL).Err()
}

// GetCachedProduct loads a cached product detail into dest.
// Returns false on a cache miss.
func (c *Client) GetCachedProduct(ctx context.Context, productID int64, dest interface{}) (bool, error) {
	data, err := c.rdb.Get(ctx, productKey(productID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, dest)
}

// InvalidateProduct drops a cached product detail after a catalog write
func (c *Client) InvalidateProduct(ctx context.Context, productID int64) error {
	return c.rdb.Del(ctx, productKey(productID)).Err()
}

// SetUnreadCount caches a user's unread notification count
func (c *Client) SetUnreadCount(ctx context.Context, userID int64, count int) error {
	return c.rdb.Set(ctx, unreadKey(userID), count, unreadCountTTL).Err()
}

// GetUnreadCount reads the cached unread count. Returns found=false on miss.
func (c *Client) GetUnreadCount(ctx context.Context, userID int64) (int, bool, error) {
	count, err := c.rdb.Get(ctx, unreadKey(userID)).Int()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// InvalidateUnreadCount drops the cached unread count after a
// notification insert or read-flag change
func (c *Client) InvalidateUnreadCount(ctx context.Context, userID int64) error {
	return c.rdb.Del(ctx, unreadKey(userID)).Err()
}

// AcquireLock acquires a distributed lock (sweep single-runner guard)
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases a distributed lock
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}

func productKey(productID int64) string {
	return fmt.Sprintf("product:%d", productID)
}

func unreadKey(userID int64) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}
