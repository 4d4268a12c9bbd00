package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLayer is the shared second-level cache. A nil client makes every call a miss.
type RedisLayer struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewRedisLayer(rc *redis.Client, ttl time.Duration) *RedisLayer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisLayer{rc: rc, ttl: ttl}
}

// Get reports a miss for absent keys; other errors are returned so the caller can log and degrade.
func (r *RedisLayer) Get(ctx context.Context, key string) (Address, bool, error) {
	if r == nil || r.rc == nil {
		return Address{}, false, nil
	}
	s, err := r.rc.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return Address{}, false, nil
	}
	if err != nil {
		return Address{}, false, err
	}
	var a Address
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return Address{}, false, err
	}
	return a, true, nil
}

func (r *RedisLayer) Set(ctx context.Context, key string, a Address) error {
	if r == nil || r.rc == nil {
		return nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return r.rc.Set(ctx, key, b, r.ttl).Err()
}
