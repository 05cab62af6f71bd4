// Package redis provides a Redis-backed answer cache. Answers are keyed by
// the question plus the retrieval settings that produced them, so a tuning
// change never serves a stale result.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sweetpotato0/docqa/rag/agentic"
)

// ErrCacheMiss is returned when no answer is cached for the key.
var ErrCacheMiss = redis.Nil

// AnswerCache stores completed query results in Redis.
type AnswerCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// CacheConfig holds Redis configuration
type CacheConfig struct {
	Addr     string        // Redis server address (e.g., "localhost:6379")
	Password string        // Redis password (if any)
	DB       int           // Redis database number
	Prefix   string        // Key prefix for namespacing
	TTL      time.Duration // Time-to-live for cached answers (0 means no expiration)
}

// NewAnswerCache creates a new Redis-based answer cache
func NewAnswerCache(config *CacheConfig) *AnswerCache {
	if config == nil {
		config = &CacheConfig{
			Addr:   "localhost:6379",
			Prefix: "docqa:answer:",
			TTL:    time.Hour,
		}
	}
	if config.Prefix == "" {
		config.Prefix = "docqa:answer:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &AnswerCache{
		client: client,
		prefix: config.Prefix,
		ttl:    config.TTL,
	}
}

// Get returns the cached result for a question, or ErrCacheMiss.
func (c *AnswerCache) Get(ctx context.Context, query string, fanOut, maxIterations int) (*agentic.Result, error) {
	data, err := c.client.Get(ctx, c.key(query, fanOut, maxIterations)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cached answer: %w", err)
	}

	var result agentic.Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached answer: %w", err)
	}
	return &result, nil
}

// Put stores a completed result.
func (c *AnswerCache) Put(ctx context.Context, query string, fanOut, maxIterations int, result *agentic.Result) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}

	if err := c.client.Set(ctx, c.key(query, fanOut, maxIterations), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store answer in Redis: %w", err)
	}
	return nil
}

// Clear removes all cached answers under the configured prefix.
func (c *AnswerCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached answers: %w", err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete cached answers: %w", err)
		}
	}
	return nil
}

// Ping checks if Redis connection is alive
func (c *AnswerCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *AnswerCache) Close() error {
	return c.client.Close()
}

func (c *AnswerCache) key(query string, fanOut, maxIterations int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d", query, fanOut, maxIterations)))
	return c.prefix + hex.EncodeToString(sum[:])
}
