// Package api exposes the resolver and the geocode cache over HTTP.
package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/geocode"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/spatial"
)

type Resolver interface {
	Resolve(ctx context.Context, lat, lon float64) (spatial.Resolution, error)
}

type Geocoder interface {
	Lookup(ctx context.Context, lat, lon float64) (geocode.Result, error)
}

type IPLocator interface {
	Locate(ip string) (spatial.Point, bool, error)
}

type PolygonCounter interface {
	Count(ctx context.Context) (int64, error)
}

type HierarchyCounter interface {
	Count(ctx context.Context) (map[int]int64, error)
}

// Deps are the collaborators behind the routes. Resolver and Polygons are required; the rest
// switch their feature off when nil.
type Deps struct {
	Resolver  Resolver
	Geocoder  Geocoder
	GeoIP     IPLocator
	Polygons  PolygonCounter
	Hierarchy HierarchyCounter
}

// BuildRoutes returns a mux meant to be mounted under the API prefix with http.StripPrefix.
func BuildRoutes(d Deps) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /resolve", d.handleResolve)
	mux.HandleFunc("GET /reverse_geo", d.handleReverseGeo)
	mux.HandleFunc("GET /stats", d.handleStats)
	return mux
}

// parseCoord reads lat and lon; ok is false when either is missing or not a finite number.
func parseCoord(r *http.Request) (lat, lon float64, present, ok bool) {
	q := r.URL.Query()
	ls, lo := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lon"))
	if ls == "" && lo == "" {
		return 0, 0, false, false
	}
	lat, err1 := strconv.ParseFloat(ls, 64)
	lon, err2 := strconv.ParseFloat(lo, 64)
	if err1 != nil || err2 != nil || math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return 0, 0, true, false
	}
	return lat, lon, true, true
}

func (d Deps) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lat, lon, present, ok := parseCoord(r)
	approx := false
	ip := ""
	if !present {
		ip = getClientIP(r)
		if d.GeoIP == nil {
			writeJSON(w, http.StatusOK, resolveResponse{Tier: string(spatial.TierUnresolved), IP: ip})
			return
		}
		p, found, err := d.GeoIP.Locate(ip)
		if err != nil {
			logger.L().Warn("resolve_geoip_error", "ip", ip, "err", err)
		}
		if !found {
			writeJSON(w, http.StatusOK, resolveResponse{Tier: string(spatial.TierUnresolved), IP: ip})
			return
		}
		lat, lon, ok, approx = p.Lat, p.Lon, true, true
	}
	if !ok {
		writeJSON(w, http.StatusOK, resolveResponse{Tier: string(spatial.TierUnresolved)})
		return
	}
	res, err := d.Resolver.Resolve(ctx, lat, lon)
	if err != nil {
		if errors.Is(err, spatial.ErrStoreUnavailable) {
			writeProblem(w, r, http.StatusServiceUnavailable, "polygon store unavailable", "")
			return
		}
		writeProblem(w, r, http.StatusInternalServerError, "resolve failed", "")
		return
	}
	out := newResolveResponse(res)
	out.Approx = approx
	out.IP = ip
	writeJSON(w, http.StatusOK, out)
}

func (d Deps) handleReverseGeo(w http.ResponseWriter, r *http.Request) {
	if d.Geocoder == nil {
		writeProblem(w, r, http.StatusServiceUnavailable, "reverse geocoding disabled", "")
		return
	}
	lat, lon, _, ok := parseCoord(r)
	if !ok {
		writeProblem(w, r, http.StatusBadRequest, "invalid coordinate", "lat and lon must be finite numbers")
		return
	}
	res, err := d.Geocoder.Lookup(r.Context(), lat, lon)
	switch {
	case errors.Is(err, geocode.ErrInvalidCoord):
		writeProblem(w, r, http.StatusBadRequest, "invalid coordinate", err.Error())
	case err != nil:
		logger.L().Error("reverse_geo_error", "lat", lat, "lon", lon, "err", err)
		writeProblem(w, r, http.StatusBadGateway, "geocode provider failed", "")
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (d Deps) handleStats(w http.ResponseWriter, r *http.Request) {
	n, err := d.Polygons.Count(r.Context())
	if err != nil {
		logger.L().Error("stats_count_error", "err", err)
		writeProblem(w, r, http.StatusServiceUnavailable, "polygon store unavailable", "")
		return
	}
	out := statsResponse{Polygons: n}
	if d.Hierarchy != nil {
		if byDepth, err := d.Hierarchy.Count(r.Context()); err == nil {
			out.Hierarchy = map[string]int64{}
			names := map[int]string{1: "provinsi", 2: "kabkota", 3: "kecamatan", 4: "keldes"}
			for depth, c := range byDepth {
				if name, ok := names[depth]; ok {
					out.Hierarchy[name] = c
				}
			}
		} else {
			logger.L().Warn("stats_hierarchy_error", "err", err)
		}
	}
	writeJSON(w, http.StatusOK, out)
}
