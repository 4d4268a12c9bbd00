// Service entry point: loads config, wires the polygon store, hierarchy and geocode cache, and
// serves the API. Routes live in internal/api.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/api"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/config"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/geocode"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/geoip"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/health"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/hierarchy"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/metrics"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/middleware"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/migrate"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/revgeo"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/seed"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/spatial"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/store"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/utils"
)

// polygonBackend is what the resolver and /stats need from either store.
type polygonBackend interface {
	spatial.PolygonStore
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Error("config_error", "err", err)
		os.Exit(1)
	}
	l := logger.SetupWith(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	l.Debug("log_init_ok")
	l.Debug("config_api_base", "base", cfg.APIBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mon := health.NewMonitor(cfg.HealthInterval)

	hs, err := hierarchy.Open(cfg.HierarchyDriver, cfg.HierarchyDSN)
	if err != nil {
		l.Error("hierarchy_open_error", "driver", cfg.HierarchyDriver, "err", err)
		os.Exit(1)
	}
	defer hs.Close()
	if err := hs.AutoMigrate(ctx); err != nil {
		l.Error("hierarchy_migrate_error", "err", err)
		os.Exit(1)
	}
	mon.Register(health.CheckFunc{N: "hierarchy", Fn: hs.Ping})
	assigner := hierarchy.NewAssigner(hs)

	var polygons polygonBackend
	switch cfg.PolygonSource {
	case "file":
		mem := revgeo.NewMemStore()
		if err := seedMemory(ctx, cfg, mem, assigner); err != nil {
			l.Error("polygon_file_error", "dir", cfg.PolygonDir, "err", err)
			os.Exit(1)
		}
		polygons = mem
	default:
		db, err := utils.OpenPostgres(ctx, cfg)
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		l.Info("db_open_ok")
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		polygons = store.AttachDB(db)
	}
	mon.Register(health.CheckFunc{N: "polygons", Fn: polygons.Ping})

	resolver := spatial.NewResolver(polygons, spatial.WithNearest(cfg.NearestRadiusM, cfg.NearestLimit))
	deps := api.Deps{Resolver: resolver, Polygons: polygons, Hierarchy: hs}

	rc := utils.OpenRedis(cfg)
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
		mon.Register(health.CheckFunc{N: "redis", Fn: func(ctx context.Context) error { return rc.Ping(ctx).Err() }})
	}

	if cfg.GeocodeProviderURL != "" {
		provider := geocode.NewNominatim(cfg.GeocodeProviderURL, cfg.GeocodeUserAgent, cfg.GeocodeRatePerSec, cfg.GeocodeTimeout)
		deps.Geocoder = geocode.NewService(provider,
			geocode.NewLRU(cfg.GeocodeLRUSize, cfg.GeocodeCacheTTL),
			geocode.NewRedisLayer(rc, cfg.GeocodeCacheTTL),
			cfg.GeocodePrecision)
		l.Info("geocode_enabled", "provider", cfg.GeocodeProviderURL)
	}

	gl, err := geoip.Open(cfg.GeoIPCityDB)
	if err != nil {
		l.Error("geoip_open_error", "path", cfg.GeoIPCityDB, "err", err)
	} else if gl.Enabled() {
		defer gl.Close()
		deps.GeoIP = gl
		l.Info("geoip_enabled", "path", cfg.GeoIPCityDB)
	}

	mon.Start(ctx)

	mux := http.NewServeMux()
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, api.BuildRoutes(deps)))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		if !mon.Healthy() {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("content-type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(mon.Snapshot())
	})

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.RateLimit(handler, cfg.RateLimitQPS)
	s := &http.Server{Addr: ":" + cfg.Port, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Shutdown(sctx); err != nil {
			l.Error("shutdown_error", "err", err)
		}
	}()

	l.Info("listening", "addr", s.Addr, "polygon_source", cfg.PolygonSource)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("listen_error", "err", err)
		os.Exit(1)
	}
	l.Info("shutdown_ok")
}

// seedMemory loads the GeoJSON directory into mem through the same pipeline the seeder uses,
// so file mode sees assigned codes too.
func seedMemory(ctx context.Context, cfg *config.Config, mem *revgeo.MemStore, a *hierarchy.Assigner) error {
	m, err := seed.ResolveManifest(cfg.PolygonDir)
	if err != nil {
		return err
	}
	sum, err := seed.New(mem, a, seed.Options{}).Run(ctx, m)
	if err != nil {
		return err
	}
	logger.L().Info("polygon_file_loaded", "files", sum.Files, "inserted", sum.Inserted, "skipped", sum.Skipped)
	return nil
}
