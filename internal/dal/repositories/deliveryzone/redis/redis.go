package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/deliveryzone"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const keyPrefix = "meatshop:zone:"

// redisClient is the part of *redis.Client the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// zoneRepository is the source of truth behind the cache.
type zoneRepository interface {
	List(ctx context.Context) ([]deliveryzone.Zone, error)
	Get(ctx context.Context, id string) (deliveryzone.Zone, error)
	Insert(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error)
	Update(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error)
	Delete(ctx context.Context, id string) error
}

// CachedZoneRepository serves zone lookups from Redis and falls back to the repository.
// Cache failures never fail a lookup.
type CachedZoneRepository struct {
	next   zoneRepository
	client redisClient
	ttl    time.Duration
}

// NewCachedZoneRepository wraps next with a Redis read-through cache.
func NewCachedZoneRepository(next zoneRepository, client redisClient) *CachedZoneRepository {
	ttl := time.Duration(viper.GetInt("redis.zone_ttl_seconds")) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &CachedZoneRepository{
		next:   next,
		client: client,
		ttl:    ttl,
	}
}

func key(id string) string {
	return keyPrefix + id
}

// List always reads the repository.
func (c *CachedZoneRepository) List(ctx context.Context) ([]deliveryzone.Zone, error) {
	return c.next.List(ctx)
}

// Get returns the cached zone or loads and caches it.
func (c *CachedZoneRepository) Get(ctx context.Context, id string) (deliveryzone.Zone, error) {
	cached, err := c.client.Get(ctx, key(id)).Result()
	if err == nil {
		var z deliveryzone.Zone
		if err := json.Unmarshal([]byte(cached), &z); err == nil {
			return z, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("Zone cache read failed", "zone_id", id, "error", err)
	}

	z, err := c.next.Get(ctx, id)
	if err != nil {
		return deliveryzone.Zone{}, err
	}

	if data, err := json.Marshal(z); err == nil {
		if err := c.client.Set(ctx, key(id), data, c.ttl).Err(); err != nil {
			slog.Warn("Zone cache write failed", "zone_id", id, "error", err)
		}
	}

	return z, nil
}

// Insert stores a zone. New zones are cached on first read.
func (c *CachedZoneRepository) Insert(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error) {
	return c.next.Insert(ctx, z)
}

// Update stores the zone and drops its cache entry.
func (c *CachedZoneRepository) Update(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error) {
	updated, err := c.next.Update(ctx, z)
	if err != nil {
		return deliveryzone.Zone{}, err
	}
	c.invalidate(ctx, z.ID)

	return updated, nil
}

// Delete removes the zone and its cache entry.
func (c *CachedZoneRepository) Delete(ctx context.Context, id string) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)

	return nil
}

func (c *CachedZoneRepository) invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, key(id)).Err(); err != nil {
		slog.Warn("Zone cache invalidation failed", "zone_id", id, "error", err)
	}
}
