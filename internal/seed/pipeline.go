package seed

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/hierarchy"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/metrics"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/spatial"
)

// Sink is the write side of a polygon store.
type Sink interface {
	Truncate(ctx context.Context) error
	InsertPolygon(ctx context.Context, p spatial.Polygon) (int64, error)
}

type Outcome string

const (
	OutcomeInserted Outcome = "inserted"
	OutcomeResolved Outcome = "resolved" // dry run
	OutcomeSkipped  Outcome = "skipped"
)

type Options struct {
	Workers int
	// DryRun builds and assigns every record but writes nothing.
	DryRun bool
	// Keep appends to the store instead of truncating it first.
	Keep bool
	// OnRecord is called once per feature after it is handled. It must be safe for concurrent use.
	OnRecord func(Outcome)
}

type Summary struct {
	RunID    string
	Files    int
	Read     int64
	Inserted int64
	Skipped  int64
	// Assigned counts codes filled by the assigner, per level name.
	Assigned map[string]int64
}

type Pipeline struct {
	sink     Sink
	assigner *hierarchy.Assigner
	opts     Options
}

// New builds a pipeline. A nil assigner leaves missing codes absent.
func New(sink Sink, assigner *hierarchy.Assigner, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Pipeline{sink: sink, assigner: assigner, opts: opts}
}

type counters struct {
	read, inserted, skipped    atomic.Int64
	kabkota, kecamatan, keldes atomic.Int64
}

// Run seeds every source of m, files in parallel.
// Background: one bad feature or unreadable file must not cost the rest of a province's load.
// Constraints:
// 1) the store is truncated first unless DryRun or Keep is set;
// 2) per-record and per-file failures are logged with the run id and skipped;
// 3) only a failed truncate or a cancelled context aborts the run.
func (p *Pipeline) Run(ctx context.Context, m *Manifest) (Summary, error) {
	runID := uuid.NewString()
	l := logger.L().With("run_id", runID)
	l.Info("seed_start", "files", len(m.Sources), "workers", p.opts.Workers, "dry_run", p.opts.DryRun, "keep", p.opts.Keep)

	if !p.opts.DryRun && !p.opts.Keep {
		if err := p.sink.Truncate(ctx); err != nil {
			return Summary{RunID: runID}, fmt.Errorf("seed truncate: %w", err)
		}
	}

	var c counters
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for _, src := range m.Sources {
		g.Go(func() error { return p.seedFile(gctx, runID, src, &c) })
	}
	err := g.Wait()

	s := Summary{
		RunID:    runID,
		Files:    len(m.Sources),
		Read:     c.read.Load(),
		Inserted: c.inserted.Load(),
		Skipped:  c.skipped.Load(),
		Assigned: map[string]int64{
			hierarchy.Regency.String():  c.kabkota.Load(),
			hierarchy.District.String(): c.kecamatan.Load(),
			hierarchy.Village.String():  c.keldes.Load(),
		},
	}
	l.Info("seed_done", "read", s.Read, "inserted", s.Inserted, "skipped", s.Skipped,
		"assigned_kabkota", s.Assigned["kabkota"], "assigned_kecamatan", s.Assigned["kecamatan"], "assigned_keldes", s.Assigned["keldes"])
	return s, err
}

func (p *Pipeline) seedFile(ctx context.Context, runID string, src Source, c *counters) error {
	l := logger.L().With("run_id", runID, "file", src.Path)
	b, err := os.ReadFile(src.Path)
	if err != nil {
		l.Error("seed_file_skip", "err", err)
		return nil
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		l.Error("seed_file_skip", "err", err)
		return nil
	}
	l.Info("seed_file_begin", "features", len(fc.Features))
	for i, f := range fc.Features {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.read.Add(1)
		outcome, err := p.seedRecord(ctx, runID, src, i, f, c)
		if err != nil {
			outcome = OutcomeSkipped
			c.skipped.Add(1)
			l.Warn("seed_record_skip", "index", i, "err", err)
		}
		metrics.SeedRecordsTotal.WithLabelValues(string(outcome)).Inc()
		if p.opts.OnRecord != nil {
			p.opts.OnRecord(outcome)
		}
	}
	return nil
}

func (p *Pipeline) seedRecord(ctx context.Context, runID string, src Source, i int, f *geojson.Feature, c *counters) (Outcome, error) {
	rec, err := BuildRecord(src, i, f)
	if err != nil {
		return OutcomeSkipped, err
	}
	codes := rec.Codes
	if p.assigner != nil {
		codes, err = p.assigner.Cascade(ctx, rec.Key, rec.Codes)
		if err != nil {
			return OutcomeSkipped, err
		}
		countAssigned(rec.Codes, codes, c)
	}
	if p.opts.DryRun {
		return OutcomeResolved, nil
	}
	_, err = p.sink.InsertPolygon(ctx, spatial.Polygon{
		Name:          rec.Name,
		Source:        rec.Source,
		SeedRun:       runID,
		ProvinsiCode:  codes.Provinsi,
		KabKotaCode:   codes.KabKota,
		KecamatanCode: codes.Kecamatan,
		KelDesCode:    codes.KelDes,
		Geometry:      rec.Geometry,
	})
	if err != nil {
		return OutcomeSkipped, err
	}
	c.inserted.Add(1)
	return OutcomeInserted, nil
}

func countAssigned(before, after hierarchy.Codes, c *counters) {
	if before.KabKota == "" && after.KabKota != "" {
		c.kabkota.Add(1)
	}
	if before.Kecamatan == "" && after.Kecamatan != "" {
		c.kecamatan.Add(1)
	}
	if before.KelDes == "" && after.KelDes != "" {
		c.keldes.Add(1)
	}
}
