package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // Error comparison
	"strconv"       // Key formatting
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache is a JSON read-through cache on Redis.
// A nil *Cache is valid and caches nothing, which is how the server runs
// when REDIS_ADDR is empty.
type Cache struct {
	rdb *redis.Client // Redis client
	ttl time.Duration // Default TTL for Set
}

// NewCache wraps a Redis client
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if rdb == nil {
		return nil // Caching disabled
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get retrieves a value from Redis and unmarshals it into dest
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil {
		return false, nil
	}
	val, err := c.rdb.Get(ctx, key).Bytes() // Get value from Redis
	if errors.Is(err, redis.Nil) {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal(val, dest) // Unmarshal JSON into dest
}

// Set stores a value in Redis with the default TTL
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err() // Set value in Redis with TTL
}

// Delete removes keys from Redis
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// DeletePrefix removes every key starting with prefix.
// SCAN keeps Redis responsive on large keyspaces, unlike KEYS.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) error {
	if c == nil {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return c.Delete(ctx, batch...)
}

// InvalidateUser drops everything cached for a user's wallet plus the
// admin listings that may include the user's transactions
func (c *Cache) InvalidateUser(ctx context.Context, userID uint) error {
	if err := c.Delete(ctx, WalletKey(userID)); err != nil {
		return err
	}
	if err := c.DeletePrefix(ctx, HistoryPrefix(userID)); err != nil {
		return err
	}
	if err := c.DeletePrefix(ctx, AdminTransactionsPrefix); err != nil {
		return err
	}
	return c.DeletePrefix(ctx, AdminUsersPrefix)
}

// Cache key layout
const (
	AdminTransactionsPrefix = "admin:txs:"   // Admin transaction listings
	AdminUsersPrefix        = "admin:users:" // Admin user listings
)

// WalletKey is the cache key of a user's wallet
func WalletKey(userID uint) string {
	return "wallet:user:" + strconv.FormatUint(uint64(userID), 10)
}

// HistoryPrefix is shared by every history page of a user
func HistoryPrefix(userID uint) string {
	return "txhistory:user:" + strconv.FormatUint(uint64(userID), 10) + ":"
}

// HistoryKey is the cache key of one page of a user's history
func HistoryKey(userID uint, page, pageSize int) string {
	return HistoryPrefix(userID) + "page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
}
