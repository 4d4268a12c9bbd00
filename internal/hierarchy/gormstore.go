package hierarchy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"
)

// Wilayah is one row of the Kemendagri reference table. Level is the depth (provinsi = 1).
type Wilayah struct {
	Code       string `gorm:"primaryKey;size:16"`
	Name       string `gorm:"size:255;not null"`
	Level      int    `gorm:"not null;index:idx_wilayah_parent_level,priority:2"`
	ParentCode string `gorm:"size:16;index:idx_wilayah_parent_level,priority:1"`
}

func (Wilayah) TableName() string { return "wilayah" }

// GormStore serves child-code lists from the wilayah table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

// Open connects to the hierarchy database. driver is "postgres" or "sqlite".
func Open(driver, dsn string) (*GormStore, error) {
	var dial gorm.Dialector
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pg":
		dial = postgres.Open(dsn)
	case "sqlite", "sqlite3":
		dial = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("hierarchy: unsupported driver %q", driver)
	}
	db, err := gorm.Open(dial, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("hierarchy: open %s: %w", driver, err)
	}
	logger.L().Info("hierarchy_store_open", "driver", driver)
	return NewGormStore(db), nil
}

// AutoMigrate creates or updates the wilayah table.
func (s *GormStore) AutoMigrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Wilayah{})
}

func (s *GormStore) ListChildCodes(ctx context.Context, parent string, level Level) ([]string, error) {
	var codes []string
	err := s.db.WithContext(ctx).
		Model(&Wilayah{}).
		Where("parent_code = ? AND level = ?", parent, level.Depth()).
		Order("code ASC").
		Pluck("code", &codes).Error
	if err != nil {
		return nil, fmt.Errorf("list %s children of %s: %w", level, parent, err)
	}
	return codes, nil
}

// Upsert writes rows in batches, replacing name/level/parent of existing codes.
func (s *GormStore) Upsert(ctx context.Context, rows []Wilayah) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "level", "parent_code"}),
	}).CreateInBatches(rows, 500).Error
}

// Count returns rows per depth.
func (s *GormStore) Count(ctx context.Context) (map[int]int64, error) {
	type row struct {
		Level int
		N     int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&Wilayah{}).
		Select("level, COUNT(*) AS n").Group("level").Order("level").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int]int64, len(rows))
	for _, r := range rows {
		out[r.Level] = r.N
	}
	return out, nil
}

// Ping checks the underlying connection.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WilayahFromCode builds a row from a raw (possibly dotted) code. Depth is the number of dotted
// segments when present, otherwise inferred from the normalized length.
func WilayahFromCode(raw, name string) (Wilayah, error) {
	code := NormalizeCode(raw)
	if code == "" {
		return Wilayah{}, fmt.Errorf("empty code")
	}
	depth := 0
	if strings.Contains(raw, ".") {
		depth = len(strings.Split(strings.Trim(strings.TrimSpace(raw), "."), "."))
	} else {
		switch len(code) {
		case 2:
			depth = 1
		case 4:
			depth = 2
		case 6:
			depth = 3
		case 10:
			depth = 4
		}
	}
	if depth < 1 || depth > 4 {
		return Wilayah{}, fmt.Errorf("%w: code %q", ErrUnknownLevel, raw)
	}
	w := Wilayah{Code: code, Name: strings.TrimSpace(name), Level: depth}
	if depth > 1 {
		l, _ := LevelForDepth(depth)
		w.ParentCode = parentPrefix(code, l-1)
	}
	return w, nil
}
