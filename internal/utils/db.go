package utils

import (
	"context"
	"database/sql"
	"time"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/config"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"

	_ "github.com/lib/pq"
)

// OpenPostgres opens the PostGIS database and applies pool limits from cfg.
// The connection is verified with a bounded ping; a failed ping is returned as an error.
func OpenPostgres(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.L().Debug("pg_open_ok", "host", cfg.PGHost, "db", cfg.PGDatabase, "max_open", cfg.PGMaxOpenConns)
	return db, nil
}
