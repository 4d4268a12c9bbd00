package geocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey(t *testing.T) {
	cases := []struct {
		lat, lon  float64
		precision int
		want      string
	}{
		{-6.914744, 107.609810, 4, "revgeo:-6.9147:107.6098"},
		{-0.00001, 0.00001, 4, "revgeo:0.0000:0.0000"},
		{-7.5, 110, 2, "revgeo:-7.50:110.00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CacheKey(tc.lat, tc.lon, tc.precision))
	}
}

func TestValidCoord(t *testing.T) {
	assert.True(t, validCoord(-6.9, 107.6))
	assert.False(t, validCoord(95, 0))
	assert.False(t, validCoord(0, 181))
}
