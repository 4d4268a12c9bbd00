// wilayah-import loads the administrative code reference (code,name CSV) into the hierarchy
// database. Codes may be dotted (32.01.01) or plain (320101); the level comes from the code.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/config"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/hierarchy"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"
)

const batchSize = 1000

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Error("config_error", "err", err)
		os.Exit(1)
	}
	path := flag.String("file", "data/wilayah.csv", "CSV with code,name rows")
	flag.Parse()

	l := logger.SetupWith(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	ctx := context.Background()

	f, err := os.Open(*path)
	if err != nil {
		l.Error("wilayah_open_error", "path", *path, "err", err)
		os.Exit(1)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		l.Error("wilayah_stat_error", "err", err)
		os.Exit(1)
	}

	hs, err := hierarchy.Open(cfg.HierarchyDriver, cfg.HierarchyDSN)
	if err != nil {
		l.Error("hierarchy_open_error", "err", err)
		os.Exit(1)
	}
	defer hs.Close()
	if err := hs.AutoMigrate(ctx); err != nil {
		l.Error("hierarchy_migrate_error", "err", err)
		os.Exit(1)
	}

	bar := progressbar.NewOptions64(stat.Size(),
		progressbar.OptionSetDescription("importing wilayah"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)
	pr := progressbar.NewReader(f, bar)

	start := time.Now()
	n, skipped, err := importCSV(ctx, hs, &pr)
	_ = bar.Finish()
	if err != nil {
		l.Error("wilayah_import_error", "imported", n, "err", err)
		os.Exit(1)
	}
	counts, _ := hs.Count(ctx)
	l.Info("wilayah_import_done",
		"imported", n,
		"skipped", skipped,
		"by_depth", counts,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

type upserter interface {
	Upsert(ctx context.Context, rows []hierarchy.Wilayah) error
}

// importCSV reads code,name rows and upserts them in batches. A first row without digits in
// its code column is taken as a header. Rows with an unusable code are skipped.
func importCSV(ctx context.Context, dst upserter, r io.Reader) (imported, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	batch := make([]hierarchy.Wilayah, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := dst.Upsert(ctx, batch); err != nil {
			return err
		}
		imported += len(batch)
		batch = batch[:0]
		return nil
	}

	line := 0
	for {
		rec, rerr := cr.Read()
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return imported, skipped, fmt.Errorf("csv line %d: %w", line+1, rerr)
		}
		line++
		if line == 1 && !strings.ContainsAny(rec[0], "0123456789") {
			continue
		}
		if len(rec) < 2 {
			skipped++
			continue
		}
		w, werr := hierarchy.WilayahFromCode(rec[0], strings.TrimSpace(rec[1]))
		if werr != nil {
			skipped++
			logger.L().Debug("wilayah_row_skipped", "line", line, "code", rec[0], "err", werr)
			continue
		}
		batch = append(batch, w)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return imported, skipped, err
			}
		}
	}
	if err := flush(); err != nil {
		return imported, skipped, err
	}
	return imported, skipped, nil
}
