package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/somoapp/campus-events/internal/domain"
)

const campusListKey = "cache:universities"

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

// GetCampuses returns the cached unfiltered campus list, or nil on a miss.
// The reference set is read-only, so staleness within the TTL is harmless.
func (c *Cache) GetCampuses(ctx context.Context) ([]domain.Campus, error) {
	val, err := c.client.Get(ctx, campusListKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var campuses []domain.Campus
	if err := json.Unmarshal(val, &campuses); err != nil {
		return nil, err
	}
	return campuses, nil
}

func (c *Cache) SetCampuses(ctx context.Context, campuses []domain.Campus, ttl time.Duration) error {
	data, err := json.Marshal(campuses)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, campusListKey, data, ttl).Err()
}
