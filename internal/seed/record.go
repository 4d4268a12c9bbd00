package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/hierarchy"
)

var ErrNoGeometry = errors.New("feature has no areal geometry")

// Record is one feature ready for assignment and insertion.
type Record struct {
	Key      string
	Name     string
	Source   string
	Index    int
	Codes    hierarchy.Codes
	Geometry orb.Geometry
}

// BuildRecord reads the mapped properties of f. The entity key is the id property, else the
// secondary id, else "<file>#<index>".
func BuildRecord(src Source, index int, f *geojson.Feature) (Record, error) {
	file := filepath.Base(src.Path)
	rec := Record{Source: file, Index: index}
	if f == nil || f.Geometry == nil {
		return rec, ErrNoGeometry
	}
	switch f.Geometry.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return rec, fmt.Errorf("%w: %s", ErrNoGeometry, f.Geometry.GeoJSONType())
	}
	rec.Geometry = f.Geometry

	props := f.Properties
	id := propString(props, src.IDProperty)
	if id == "" && f.ID != nil {
		id = scalarString(f.ID)
	}
	secondary := propString(props, src.SecondaryIDProperty)
	rec.Key = hierarchy.EntityKey(id, secondary, index)
	if id == "" && secondary == "" {
		rec.Key = file + "#" + rec.Key
	}
	rec.Name = propString(props, src.NameProperty)
	if rec.Name == "" {
		rec.Name = rec.Key
	}
	rec.Codes = hierarchy.Codes{
		Provinsi:  propString(props, src.ProvinsiProperty),
		KabKota:   propString(props, src.KabKotaProperty),
		Kecamatan: propString(props, src.KecamatanProperty),
		KelDes:    propString(props, src.KelDesProperty),
	}.Normalize().FillParents()
	if rec.Codes.Provinsi == "" {
		rec.Codes.Provinsi = hierarchy.NormalizeCode(src.DefaultProvinsi)
	}
	return rec, nil
}

func propString(props geojson.Properties, key string) string {
	if key == "" || props == nil {
		return ""
	}
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	return scalarString(v)
}

// scalarString renders JSON scalars; whole floats print without a fraction so a numeric
// code 3201 stays "3201".
func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}
