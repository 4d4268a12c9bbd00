package geocode

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/metrics"
)

// Result is an address plus whether it came from a cache layer.
type Result struct {
	Address
	Cached bool `json:"cached"`
}

// Service looks up LRU, then Redis, then the provider. Provider results fill both layers;
// provider errors are returned and nothing is cached.
type Service struct {
	lru       *LRU
	redis     *RedisLayer
	provider  Provider
	precision int
}

func NewService(provider Provider, lru *LRU, rl *RedisLayer, precision int) *Service {
	if precision <= 0 {
		precision = 4
	}
	return &Service{lru: lru, redis: rl, provider: provider, precision: precision}
}

func (s *Service) Lookup(ctx context.Context, lat, lon float64) (Result, error) {
	if !validCoord(lat, lon) {
		return Result{}, fmt.Errorf("%w: %v,%v", ErrInvalidCoord, lat, lon)
	}
	key := CacheKey(lat, lon, s.precision)
	if s.lru != nil {
		if a, ok := s.lru.Get(key); ok {
			metrics.GeocodeCacheTotal.WithLabelValues("lru", "hit").Inc()
			return Result{Address: a, Cached: true}, nil
		}
		metrics.GeocodeCacheTotal.WithLabelValues("lru", "miss").Inc()
	}
	if s.redis != nil {
		a, ok, err := s.redis.Get(ctx, key)
		switch {
		case err != nil:
			logger.L().Warn("geocode_redis_get_error", "key", key, "err", err)
		case ok:
			metrics.GeocodeCacheTotal.WithLabelValues("redis", "hit").Inc()
			if s.lru != nil {
				s.lru.Set(key, a)
			}
			return Result{Address: a, Cached: true}, nil
		default:
			metrics.GeocodeCacheTotal.WithLabelValues("redis", "miss").Inc()
		}
	}

	// Round-trip the provider on the rounded coordinate so the cached answer matches the key.
	rlat, rlon := roundTo(lat, s.precision), roundTo(lon, s.precision)
	t0 := time.Now()
	a, err := s.provider.Reverse(ctx, rlat, rlon)
	if err != nil {
		return Result{}, fmt.Errorf("reverse geocode %s: %w", key, err)
	}
	if s.lru != nil {
		s.lru.Set(key, a)
	}
	if s.redis != nil {
		if err := s.redis.Set(ctx, key, a); err != nil {
			logger.L().Warn("geocode_redis_set_error", "key", key, "err", err)
		}
	}
	logger.L().Debug("geocode_provider_fill", "key", key, "duration_ms", time.Since(t0).Milliseconds())
	return Result{Address: a}, nil
}

func roundTo(v float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}
