// Package geocode turns coordinates into human-readable Indonesian place names through a
// rate-limited Nominatim client, fronted by an in-process LRU and an optional Redis layer.
package geocode

import (
	"errors"
	"math"
	"strconv"
)

var (
	ErrProviderStatus = errors.New("geocode provider returned an error")
	ErrInvalidCoord   = errors.New("invalid coordinate")
)

// CacheKey is "revgeo:<lat>:<lon>" with both components rounded to precision decimals.
// Negative zero prints as zero so both sides of the equator share a key.
func CacheKey(lat, lon float64, precision int) string {
	return "revgeo:" + formatCoord(lat, precision) + ":" + formatCoord(lon, precision)
}

func formatCoord(v float64, precision int) string {
	p := math.Pow(10, float64(precision))
	r := math.Round(v*p) / p
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', precision, 64)
}

func validCoord(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
