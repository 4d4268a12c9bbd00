package seed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/hierarchy"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/revgeo"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/spatial"
)

type mapHierarchy map[string][]string

func (m mapHierarchy) ListChildCodes(_ context.Context, parent string, level hierarchy.Level) ([]string, error) {
	return m[level.String()+":"+parent], nil
}

var jabar = mapHierarchy{
	"kecamatan:3273": {"327301", "327302"},
	"keldes:327301":  {"3273011001"},
	"keldes:327302":  {"3273021001"},
}

type recordingSink struct {
	mu        sync.Mutex
	truncated int
	rows      []spatial.Polygon
	failName  string
}

func (s *recordingSink) Truncate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.truncated++
	return nil
}

func (s *recordingSink) InsertPolygon(_ context.Context, p spatial.Polygon) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Name == s.failName {
		return 0, errors.New("insert failed")
	}
	s.rows = append(s.rows, p)
	return int64(len(s.rows)), nil
}

func (s *recordingSink) byName(name string) spatial.Polygon {
	for _, r := range s.rows {
		if r.Name == name {
			return r
		}
	}
	return spatial.Polygon{}
}

func TestPipelineSeedsAndAssigns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "citarum.geojson", citarumGeoJSON)
	m, err := DirManifest(dir)
	require.NoError(t, err)

	sink := &recordingSink{}
	var seen atomic.Int32
	p := New(sink, hierarchy.NewAssigner(jabar), Options{Workers: 2, OnRecord: func(Outcome) { seen.Add(1) }})
	sum, err := p.Run(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, 1, sink.truncated)
	assert.Equal(t, int64(4), sum.Read)
	assert.Equal(t, int64(3), sum.Inserted)
	assert.Equal(t, int64(1), sum.Skipped)
	assert.Equal(t, int32(4), seen.Load())
	assert.NotEmpty(t, sum.RunID)

	full := sink.byName("Citarum Hulu")
	assert.Equal(t, "3204012001", full.KelDesCode)
	assert.Equal(t, sum.RunID, full.SeedRun)
	assert.Equal(t, "citarum.geojson", full.Source)

	partial := sink.byName("Cikapundung")
	assert.Equal(t, "32", partial.ProvinsiCode)
	assert.Equal(t, "3273", partial.KabKotaCode)
	assert.Contains(t, []string{"327301", "327302"}, partial.KecamatanCode)
	assert.Equal(t, partial.KecamatanCode+"1001", partial.KelDesCode)
	assert.Equal(t, int64(1), sum.Assigned["kecamatan"])
	assert.Equal(t, int64(1), sum.Assigned["keldes"])
	assert.Zero(t, sum.Assigned["kabkota"])
}

func TestPipelineIsReproducible(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "citarum.geojson", citarumGeoJSON)
	m, err := DirManifest(dir)
	require.NoError(t, err)

	var got []string
	for i := 0; i < 2; i++ {
		sink := &recordingSink{}
		_, err := New(sink, hierarchy.NewAssigner(jabar), Options{}).Run(context.Background(), m)
		require.NoError(t, err)
		got = append(got, sink.byName("Cikapundung").KecamatanCode)
	}
	assert.Equal(t, got[0], got[1])
}

func TestPipelineDryRunAndKeep(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "citarum.geojson", citarumGeoJSON)
	m, _ := DirManifest(dir)

	sink := &recordingSink{}
	sum, err := New(sink, nil, Options{DryRun: true}).Run(context.Background(), m)
	require.NoError(t, err)
	assert.Zero(t, sink.truncated)
	assert.Empty(t, sink.rows)
	assert.Zero(t, sum.Inserted)

	sum, err = New(sink, nil, Options{Keep: true}).Run(context.Background(), m)
	require.NoError(t, err)
	assert.Zero(t, sink.truncated)
	assert.Equal(t, int64(3), sum.Inserted)
}

func TestPipelineSkipsFailedInsertsAndMissingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "citarum.geojson", citarumGeoJSON)
	m, _ := DirManifest(dir)
	m.Sources = append(m.Sources, defaultSource(dir+"/missing.geojson"))

	sink := &recordingSink{failName: "Cikapundung"}
	sum, err := New(sink, nil, Options{}).Run(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Inserted)
	assert.Equal(t, int64(2), sum.Skipped)
}

func TestPipelineIntoMemStoreServesResolver(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "citarum.geojson", citarumGeoJSON)
	m, _ := DirManifest(dir)
	mem := revgeo.NewMemStore()
	_, err := New(mem, hierarchy.NewAssigner(jabar), Options{}).Run(context.Background(), m)
	require.NoError(t, err)

	res, err := spatial.NewResolver(mem).Resolve(context.Background(), -6.95, 107.65)
	require.NoError(t, err)
	assert.Equal(t, spatial.TierStrict, res.Tier)
	assert.Equal(t, "320401", res.KecamatanCode)
}
