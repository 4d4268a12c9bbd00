// Package migrate bootstraps the PostGIS schema of the polygon store.
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"
)

// Statements are idempotent so EnsureSchema can run on every start.
var Statements = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE TABLE IF NOT EXISTS das (
        id BIGSERIAL PRIMARY KEY,
        name TEXT NOT NULL DEFAULT '',
        source TEXT NOT NULL DEFAULT '',
        seed_run UUID,
        provinsi_code TEXT,
        kab_kota_code TEXT,
        kecamatan_code TEXT,
        kel_des_code TEXT,
        geom geometry(MultiPolygon, 4326) NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS das_geom_gix ON das USING GIST (geom)`,
	`CREATE INDEX IF NOT EXISTS das_kab_kota_idx ON das (kab_kota_code)`,
	`CREATE INDEX IF NOT EXISTS das_seed_run_idx ON das (seed_run)`,
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range Statements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
