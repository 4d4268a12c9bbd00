// Package config loads service settings from .env and the process environment.
package config

import (
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	APIBase string

	LogLevel  string
	LogFormat string

	// PostGIS polygon store
	PGHost         string
	PGPort         string
	PGUser         string
	PGPassword     string
	PGDatabase     string
	PGSSLMode      string
	PGMaxOpenConns int
	PGMaxIdleConns int

	// Hierarchy reference data (wilayah codes)
	HierarchyDriver string
	HierarchyDSN    string

	RedisEnabled bool
	RedisHost    string
	RedisPort    string
	RedisPass    string
	RedisDB      int

	// postgis | file
	PolygonSource string
	PolygonDir    string

	NearestRadiusM float64
	NearestLimit   int

	GeocodeProviderURL string
	GeocodeUserAgent   string
	GeocodeRatePerSec  float64
	GeocodeTimeout     time.Duration
	GeocodePrecision   int
	GeocodeCacheTTL    time.Duration
	GeocodeLRUSize     int

	GeoIPCityDB string

	HealthInterval time.Duration

	// 0 disables the limiter
	RateLimitQPS int
}

// Load reads .env when present and falls back to defaults for anything unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		APIBase: strings.TrimRight(getEnv("API_BASE", "/api"), "/"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		PGHost:         getEnv("PG_HOST", "localhost"),
		PGPort:         getEnv("PG_PORT", "5432"),
		PGUser:         getEnv("PG_USER", "postgres"),
		PGPassword:     getEnv("PG_PASSWORD", ""),
		PGDatabase:     getEnv("PG_DB", "fews"),
		PGSSLMode:      getEnv("PG_SSLMODE", "disable"),
		PGMaxOpenConns: getEnvAsInt("PG_MAX_OPEN_CONNS", 20),
		PGMaxIdleConns: getEnvAsInt("PG_MAX_IDLE_CONNS", 10),

		HierarchyDriver: getEnv("HIERARCHY_DB_DRIVER", "postgres"),
		HierarchyDSN:    getEnv("HIERARCHY_DB_DSN", ""),

		RedisEnabled: getEnvAsBool("REDIS_ENABLED", true),
		RedisHost:    getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:    getEnv("REDIS_PORT", "6379"),
		RedisPass:    getEnv("REDIS_PASS", ""),
		RedisDB:      getEnvAsInt("REDIS_DB", 0),

		PolygonSource: strings.ToLower(getEnv("POLYGON_SOURCE", "postgis")),
		PolygonDir:    getEnv("POLYGON_DIR", "data/das"),

		NearestRadiusM: getEnvAsFloat("RESOLVE_NEAREST_RADIUS_M", 5000),
		NearestLimit:   getEnvAsInt("RESOLVE_NEAREST_LIMIT", 5),

		GeocodeProviderURL: getEnv("GEOCODE_PROVIDER_URL", "https://nominatim.openstreetmap.org"),
		GeocodeUserAgent:   getEnv("GEOCODE_USER_AGENT", "fews-be/1.0"),
		GeocodeRatePerSec:  getEnvAsFloat("GEOCODE_RATE_PER_SEC", 1),
		GeocodeTimeout:     getEnvAsDuration("GEOCODE_TIMEOUT", 5*time.Second),
		GeocodePrecision:   getEnvAsInt("GEOCODE_CACHE_PRECISION", 4),
		GeocodeCacheTTL:    getEnvAsDuration("GEOCODE_CACHE_TTL", 24*time.Hour),
		GeocodeLRUSize:     getEnvAsInt("GEOCODE_LRU_SIZE", 4096),

		GeoIPCityDB: getEnv("GEOIP_CITY_DB", ""),

		HealthInterval: getEnvAsDuration("HEALTH_INTERVAL", 10*time.Second),
	}

	if getEnvAsBool("RATE_LIMIT_ENABLED", false) {
		cfg.RateLimitQPS = getEnvAsInt("RATE_LIMIT_QPS", 200)
	}

	if cfg.HierarchyDSN == "" && cfg.HierarchyDriver == "postgres" {
		cfg.HierarchyDSN = cfg.PostgresDSN()
	}
	return cfg, nil
}

// PostgresDSN builds a lib/pq URL from the PG_* settings. Credentials are escaped.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(c.PGUser),
		Host:     net.JoinHostPort(c.PGHost, c.PGPort),
		Path:     "/" + c.PGDatabase,
		RawQuery: url.Values{"sslmode": {c.PGSSLMode}}.Encode(),
	}
	if c.PGPassword != "" {
		u.User = url.UserPassword(c.PGUser, c.PGPassword)
	}
	return u.String()
}

func (c *Config) RedisAddr() string { return c.RedisHost + ":" + c.RedisPort }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
