package utils

import (
	"github.com/Nardi-Minardi/fews-be-sub001/internal/config"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedis returns nil when Redis is disabled so callers can degrade to the in-process cache.
func OpenRedis(cfg *config.Config) *redis.Client {
	if !cfg.RedisEnabled || cfg.RedisHost == "" {
		return nil
	}
	db := cfg.RedisDB
	if db < 0 {
		db = 0
	}
	logger.L().Debug("redis_env", "addr", cfg.RedisAddr(), "db", db)
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr(), Password: cfg.RedisPass, DB: db})
}
