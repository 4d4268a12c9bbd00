// das-seed loads watershed GeoJSON into the PostGIS das table. Missing administrative codes are
// filled by the hierarchy assigner, so a reseed with the same inputs yields the same codes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/config"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/hierarchy"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/migrate"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/revgeo"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/seed"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/store"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Error("config_error", "err", err)
		os.Exit(1)
	}
	manifest := flag.String("manifest", cfg.PolygonDir, "manifest.yaml or a directory of .geojson files")
	workers := flag.Int("workers", runtime.NumCPU(), "files seeded concurrently")
	dryRun := flag.Bool("dry-run", false, "parse and assign codes without writing")
	keep := flag.Bool("keep", false, "append instead of truncating das first")
	quiet := flag.Bool("quiet", false, "no progress bar")
	flag.Parse()

	l := logger.SetupWith(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := seed.ResolveManifest(*manifest)
	if err != nil {
		l.Error("manifest_error", "path", *manifest, "err", err)
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

	var sink seed.Sink
	if *dryRun {
		sink = revgeo.NewMemStore()
	} else {
		db, err := utils.OpenPostgres(ctx, cfg)
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		sink = store.AttachDB(db)
	}

	opts := seed.Options{Workers: *workers, DryRun: *dryRun, Keep: *keep}
	if !*quiet {
		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("seeding das"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("features"),
			progressbar.OptionShowIts(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
		)
		opts.OnRecord = func(seed.Outcome) { _ = bar.Add(1) }
		defer func() { _ = bar.Finish() }()
	}

	start := time.Now()
	sum, err := seed.New(sink, hierarchy.NewAssigner(hs), opts).Run(ctx, m)
	if err != nil {
		l.Error("seed_error", "run_id", sum.RunID, "err", err)
		os.Exit(1)
	}
	l.Info("seed_done",
		"run_id", sum.RunID,
		"files", sum.Files,
		"read", sum.Read,
		"inserted", sum.Inserted,
		"skipped", sum.Skipped,
		"assigned", sum.Assigned,
		"dry_run", *dryRun,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
