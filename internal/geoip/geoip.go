// Package geoip turns a device IP into an approximate coordinate using a GeoLite2 City database.
package geoip

import (
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/spatial"
)

// Locator is nil-safe: a nil *Locator reports every IP as unlocated.
type Locator struct {
	r *geoip2.Reader
}

// Open loads the mmdb at path. An empty path returns a nil Locator and no error.
func Open(path string) (*Locator, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip db %s: %w", path, err)
	}
	logger.L().Info("geoip_open_ok", "path", path, "type", r.Metadata().DatabaseType)
	return &Locator{r: r}, nil
}

func (l *Locator) Enabled() bool { return l != nil && l.r != nil }

// Locate returns the city-level coordinate of ip. ok is false for unparsable IPs and for
// records without a location.
func (l *Locator) Locate(ip string) (p spatial.Point, ok bool, err error) {
	if !l.Enabled() {
		return spatial.Point{}, false, nil
	}
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return spatial.Point{}, false, nil
	}
	rec, err := l.r.City(parsed)
	if err != nil {
		return spatial.Point{}, false, fmt.Errorf("geoip lookup %s: %w", ip, err)
	}
	lat, lon := rec.Location.Latitude, rec.Location.Longitude
	if lat == 0 && lon == 0 {
		return spatial.Point{}, false, nil
	}
	logger.L().Debug("geoip_hit", "ip", ip, "lat", lat, "lon", lon, "accuracy_km", rec.Location.AccuracyRadius)
	return spatial.Point{Lat: lat, Lon: lon}, true, nil
}

func (l *Locator) Close() error {
	if !l.Enabled() {
		return nil
	}
	return l.r.Close()
}
