package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultAvailabilityTTL = 30 * time.Second

// AvailabilityCache keeps remaining capacity per ticket type in Redis for
// the read path. Allocation never consults it.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = DefaultAvailabilityTTL
	}

	return &AvailabilityCache{client: client, ttl: ttl}
}

func availabilityKey(typeID uuid.UUID) string {
	return fmt.Sprintf("availability:%s", typeID.String())
}

func (c *AvailabilityCache) GetRemaining(ctx context.Context, typeID uuid.UUID) (int, bool, error) {
	remaining, err := c.client.Get(ctx, availabilityKey(typeID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}

		return 0, false, err
	}

	return remaining, true, nil
}

func (c *AvailabilityCache) SetRemaining(ctx context.Context, typeID uuid.UUID, remaining int) error {
	return c.client.Set(ctx, availabilityKey(typeID), remaining, c.ttl).Err()
}

func (c *AvailabilityCache) Invalidate(ctx context.Context, typeIDs ...uuid.UUID) error {
	if len(typeIDs) == 0 {
		return nil
	}

	keys := make([]string, len(typeIDs))
	for i, id := range typeIDs {
		keys[i] = availabilityKey(id)
	}

	return c.client.Del(ctx, keys...).Err()
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     100,
		MinIdleConns: 10,
		MaxRetries:   3,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return client, nil
}
