package api

import (
	"net"
	"net/http"
	"strings"
)

// getClientIP picks the device address for /resolve without coordinates: the ip parameter,
// then the usual proxy headers, then the socket peer. Headers are trusted as sent; deploy behind
// a proxy that overwrites them.
func getClientIP(r *http.Request) string {
	if q := strings.TrimSpace(r.URL.Query().Get("ip")); q != "" {
		return q
	}
	h := r.Header
	if x := h.Get("x-forwarded-for"); x != "" {
		return strings.TrimSpace(strings.Split(x, ",")[0])
	}
	for _, k := range []string{"cf-connecting-ip", "x-real-ip", "x-client-ip"} {
		if x := strings.TrimSpace(h.Get(k)); x != "" {
			return x
		}
	}
	if x := h.Get("forwarded"); x != "" {
		if i := strings.Index(strings.ToLower(x), "for="); i >= 0 {
			y := x[i+4:]
			if p := strings.IndexAny(y, ";,"); p >= 0 {
				y = y[:p]
			}
			y = strings.Trim(strings.TrimSpace(y), "\"")
			if host, _, err := net.SplitHostPort(y); err == nil {
				return host
			}
			return strings.Trim(y, "[]")
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
