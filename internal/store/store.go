// Package store is the PostGIS implementation of the polygon store: the three resolver queries
// plus the write path used by seeding.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/paulmach/orb/geojson"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/spatial"

	_ "github.com/lib/pq"
)

// Store holds the connection pool. Every read repairs geometry with ST_MakeValid, keeps only
// the areal part and drops rows whose repair comes back empty.
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

const candidateCTE = `
WITH pt AS (SELECT ST_SetSRID(ST_MakePoint($1, $2), 4326) AS g),
cand AS (
    SELECT d.id, d.provinsi_code, d.kab_kota_code, d.kecamatan_code, d.kel_des_code,
           ST_CollectionExtract(ST_MakeValid(d.geom), 3) AS geom
    FROM das d, pt
    WHERE d.geom && ST_Expand(pt.g, $3)
)
SELECT c.id,
       COALESCE(c.provinsi_code, ''), COALESCE(c.kab_kota_code, ''),
       COALESCE(c.kecamatan_code, ''), COALESCE(c.kel_des_code, ''),
       %s
FROM cand c, pt
WHERE NOT ST_IsEmpty(c.geom) AND %s`

var (
	containingSQL = fmt.Sprintf(candidateCTE, `ST_Area(c.geom::geography) AS metric`, `ST_Contains(c.geom, pt.g)`) +
		`
ORDER BY metric ASC, c.id ASC`
	coveringSQL = fmt.Sprintf(candidateCTE, `ST_Area(c.geom::geography) AS metric`, `ST_Covers(c.geom, pt.g)`) +
		`
ORDER BY metric ASC, c.id ASC`
	withinSQL = fmt.Sprintf(candidateCTE, `ST_Distance(c.geom::geography, pt.g::geography) AS metric`,
		`ST_DWithin(c.geom::geography, pt.g::geography, $4)`) + `
ORDER BY metric ASC, c.id ASC
LIMIT $5`
)

func (s *Store) FindContaining(ctx context.Context, p spatial.Point) ([]spatial.Candidate, error) {
	return s.query(ctx, "containing", containingSQL, false, p.Lon, p.Lat, 0.0)
}

func (s *Store) FindCovering(ctx context.Context, p spatial.Point) ([]spatial.Candidate, error) {
	return s.query(ctx, "covering", coveringSQL, false, p.Lon, p.Lat, 0.0)
}

func (s *Store) FindWithin(ctx context.Context, p spatial.Point, radiusM float64, limit int) ([]spatial.Candidate, error) {
	var lim sql.NullInt64
	if limit > 0 {
		lim = sql.NullInt64{Int64: int64(limit), Valid: true}
	}
	return s.query(ctx, "within", withinSQL, true, p.Lon, p.Lat, padDegrees(p.Lat, radiusM), radiusM, lim)
}

func (s *Store) query(ctx context.Context, name, q string, byDistance bool, args ...any) ([]spatial.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("das %s query: %w", name, err)
	}
	defer rows.Close()
	var out []spatial.Candidate
	for rows.Next() {
		var c spatial.Candidate
		var metric float64
		if err := rows.Scan(&c.ID, &c.ProvinsiCode, &c.KabKotaCode, &c.KecamatanCode, &c.KelDesCode, &metric); err != nil {
			return nil, fmt.Errorf("das %s scan: %w", name, err)
		}
		if byDistance {
			c.DistanceM = metric
		} else {
			c.AreaM2 = metric
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("das %s rows: %w", name, err)
	}
	logger.L().Debug("das_query", "kind", name, "rows", len(out))
	return out, nil
}

// padDegrees converts a metric radius into a bounding-box pad wide enough at lat for the
// index prefilter. The longitude span is the wider one away from the equator.
func padDegrees(lat, radiusM float64) float64 {
	const metersPerDegree = 6378137 * math.Pi / 180
	cos := math.Max(math.Cos(lat*math.Pi/180), 0.01)
	return radiusM / metersPerDegree / cos * 1.01
}

// Truncate removes every polygon. The id sequence is not restarted so ids are never reused
// across reseeds.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `TRUNCATE TABLE das`); err != nil {
		return fmt.Errorf("truncate das: %w", err)
	}
	logger.L().Info("das_truncated")
	return nil
}

const insertSQL = `
INSERT INTO das (name, source, seed_run, provinsi_code, kab_kota_code, kecamatan_code, kel_des_code, geom)
VALUES ($1, $2, NULLIF($3, '')::uuid, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
        ST_Multi(ST_CollectionExtract(ST_MakeValid(ST_SetSRID(ST_GeomFromGeoJSON($8), 4326)), 3)))
RETURNING id`

// InsertPolygon stores p with its geometry repaired on the way in and returns the new id.
func (s *Store) InsertPolygon(ctx context.Context, p spatial.Polygon) (int64, error) {
	gj, err := encodeGeometry(p)
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.db.QueryRowContext(ctx, insertSQL,
		p.Name, p.Source, p.SeedRun,
		p.ProvinsiCode, p.KabKotaCode, p.KecamatanCode, p.KelDesCode, gj,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert das %q: %w", p.Name, err)
	}
	return id, nil
}

func encodeGeometry(p spatial.Polygon) (string, error) {
	if p.Geometry == nil {
		return "", fmt.Errorf("das %q: missing geometry", p.Name)
	}
	b, err := geojson.NewGeometry(p.Geometry).MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("das %q: encode geometry: %w", p.Name, err)
	}
	return string(b), nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM das`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count das: %w", err)
	}
	return n, nil
}

var _ spatial.PolygonStore = (*Store)(nil)
