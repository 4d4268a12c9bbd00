package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// citarumGeoJSON has three watersheds: full codes, a regency only, and no identifiers at all.
const citarumGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "properties": {"das_id": "DAS-CTR-01", "name": "Citarum Hulu", "kab_kota_code": "32.04", "kecamatan_code": "32.04.01", "kel_des_code": "32.04.01.2001"},
     "geometry": {"type": "Polygon", "coordinates": [[[107.60,-7.00],[107.70,-7.00],[107.70,-6.90],[107.60,-6.90],[107.60,-7.00]]]}},
    {"type": "Feature",
     "properties": {"objectid": 77, "name": "Cikapundung", "kab_kota_code": 3273},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[107.55,-6.90],[107.65,-6.90],[107.65,-6.80],[107.55,-6.80],[107.55,-6.90]]]]}},
    {"type": "Feature",
     "properties": {},
     "geometry": {"type": "Polygon", "coordinates": [[[107.80,-7.00],[107.90,-7.00],[107.90,-6.90],[107.80,-6.90],[107.80,-7.00]]]}},
    {"type": "Feature",
     "properties": {"das_id": "broken"},
     "geometry": {"type": "Point", "coordinates": [107.6, -6.9]}}
  ]
}`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}
