package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"fmt"           // Key formatting
	"time"          // Time durations

	"github.com/google/uuid"       // Owner identifiers
	"github.com/redis/go-redis/v9" // Redis client
)

// ContactsGenerationKey holds the counter every contact write for owner bumps
func ContactsGenerationKey(owner uuid.UUID) string {
	return "contacts:gen:user:" + owner.String()
}

// ContactsCacheKey is the cache key holding an owner's full contact list as of generation gen
func ContactsCacheKey(owner uuid.UUID, gen int64) string {
	return fmt.Sprintf("contacts:user:%s:gen:%d", owner, gen)
}

// GetGeneration reads a write counter; a missing key or nil client is generation zero
func GetGeneration(ctx context.Context, rdb *redis.Client, key string) (int64, error) {
	if rdb == nil {
		return 0, nil
	}
	gen, err := rdb.Get(ctx, key).Int64() // Get counter from Redis
	if err == redis.Nil {
		return 0, nil // Nothing written yet
	}
	return gen, err
}

// BumpGeneration advances a write counter. Entries keyed by an older generation are never read again
// and age out through their TTL.
func BumpGeneration(ctx context.Context, rdb *redis.Client, key string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Incr(ctx, key).Err() // Atomic increment in Redis
}

// GetCache retrieves a value from Redis and unmarshals it into dest.
// A nil client behaves like an empty cache.
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}
