// Package cache provides an advisory Redis cache for the latest
// checkpoint token. The store stays authoritative: any cache error or
// miss falls through to a store read.
package cache

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	checkpointKey = "rxdb:checkpoint"
	checkpointTTL = time.Hour
)

type CheckpointCache struct {
	client *redis.Client
}

func NewCheckpointCache(client *redis.Client) *CheckpointCache {
	return &CheckpointCache{client: client}
}

func (c *CheckpointCache) GetToken(ctx context.Context) (string, bool) {
	token, err := c.client.Get(ctx, checkpointKey).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[Cache] Checkpoint read failed: %v", err)
		}
		return "", false
	}
	return token, true
}

func (c *CheckpointCache) SetToken(ctx context.Context, token string) {
	if err := c.client.Set(ctx, checkpointKey, token, checkpointTTL).Err(); err != nil {
		log.Printf("[Cache] Checkpoint write failed: %v", err)
	}
}

func (c *CheckpointCache) Close() error {
	return c.client.Close()
}
