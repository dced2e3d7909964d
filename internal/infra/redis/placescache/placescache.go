package infra_places_cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis"

	"github.com/ashchv/grubswipe/internal/model"
)

// Caches nearby-search results per location so that a burst of new rooms
// in the same area costs one upstream call instead of one per room.
type Driver struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func New(
	client *redis.Client,
	key string,
	ttl time.Duration,
) *Driver {
	return &Driver{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

func (d *Driver) Load(ctx context.Context, key string) ([]model.Restaurant, bool, error) {
	val, err := d.client.Get(d.getFullKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}

	var restaurants []model.Restaurant
	if err := json.Unmarshal([]byte(val), &restaurants); err != nil {
		return nil, false, err
	}
	return restaurants, true, nil
}

func (d *Driver) Store(ctx context.Context, key string, restaurants []model.Restaurant) error {
	b, err := json.Marshal(restaurants)
	if err != nil {
		return err
	}
	return d.client.Set(d.getFullKey(key), string(b), d.ttl).Err()
}

func (d *Driver) getFullKey(key string) string {
	if d.key != "" {
		return d.key + ":" + key
	}
	return key
}
