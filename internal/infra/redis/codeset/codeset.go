package infra_redis_codeset

import (
	"context"
	"time"

	"github.com/go-redis/redis"

	"github.com/ashchv/grubswipe/internal/model"
)

// Reserved codes live in a single set, so reservation is one atomic SAdd
// no matter how many coordinator instances share the Redis.
const setTTL = 24 * time.Hour

type Driver struct {
	client *redis.Client
	key    string
}

func New(
	client *redis.Client,
	key string,
) *Driver {
	return &Driver{
		client: client,
		key:    key,
	}
}

func (d *Driver) Reserve(ctx context.Context, roomID model.RoomID) (bool, error) {
	added, err := d.client.SAdd(d.key, string(roomID)).Result()
	if err != nil {
		return false, err
	}
	// Codes allocated but never joined would otherwise pile up forever.
	d.client.Expire(d.key, setTTL)
	return added == 1, nil
}

func (d *Driver) Release(ctx context.Context, roomID model.RoomID) error {
	if roomID == model.EmptyRoomID {
		return nil
	}
	return d.client.SRem(d.key, string(roomID)).Err()
}
