package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/metrics"
)

// nominatimResponse keeps the jsonv2 fields we map. Nominatim spreads Indonesian levels over
// several OSM keys depending on how a region was tagged.
type nominatimResponse struct {
	Error       string            `json:"error"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

// Nominatim is a reverse-geocoding client for the Nominatim /reverse endpoint.
// The public instance allows one request per second and requires an identifying User-Agent.
type Nominatim struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

func NewNominatim(baseURL, userAgent string, ratePerSec float64, timeout time.Duration) *Nominatim {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if ratePerSec > 0 {
		lim = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}
	return &Nominatim{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		limiter:   lim,
	}
}

func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (Address, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return Address{}, err
	}
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("zoom", "14")
	q.Set("addressdetails", "1")
	q.Set("accept-language", "id")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return Address{}, err
	}
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	t0 := time.Now()
	logger.L().Debug("nominatim_req", "lat", lat, "lon", lon)
	resp, err := n.client.Do(req)
	if err != nil {
		logger.L().Error("nominatim_http_error", "err", err)
		metrics.GeocodeProviderTotal.WithLabelValues("http_error").Inc()
		return Address{}, err
	}
	defer resp.Body.Close()
	metrics.GeocodeProviderDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	if resp.StatusCode != http.StatusOK {
		metrics.GeocodeProviderTotal.WithLabelValues("bad_status").Inc()
		return Address{}, fmt.Errorf("%w: http %d", ErrProviderStatus, resp.StatusCode)
	}
	var r nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		logger.L().Error("nominatim_decode_error", "err", err)
		metrics.GeocodeProviderTotal.WithLabelValues("decode_error").Inc()
		return Address{}, err
	}
	if r.Error != "" {
		metrics.GeocodeProviderTotal.WithLabelValues("error").Inc()
		return Address{}, fmt.Errorf("%w: %s", ErrProviderStatus, r.Error)
	}
	metrics.GeocodeProviderTotal.WithLabelValues("ok").Inc()
	a := mapAddress(r)
	logger.L().Debug("nominatim_resp", "lat", lat, "lon", lon, "regency", a.Regency, "duration_ms", time.Since(t0).Milliseconds())
	return a, nil
}

func mapAddress(r nominatimResponse) Address {
	m := r.Address
	return Address{
		Village:     first(m, "village", "suburb", "hamlet", "neighbourhood"),
		District:    first(m, "city_district", "district", "subdistrict", "municipality"),
		Regency:     first(m, "city", "county", "regency", "town"),
		Province:    first(m, "state", "province"),
		Country:     m["country"],
		Postcode:    m["postcode"],
		DisplayName: r.DisplayName,
	}
}

func first(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(m[k]); v != "" {
			return v
		}
	}
	return ""
}
