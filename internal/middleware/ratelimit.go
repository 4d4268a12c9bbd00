// Package middleware holds HTTP wrappers shared by the API routes.
package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"
)

// RateLimit sheds load above qps requests per second with a 429; there is no queueing.
// A non-positive qps disables the limiter.
func RateLimit(next http.Handler, qps int) http.Handler {
	if qps <= 0 {
		return next
	}
	lim := rate.NewLimiter(rate.Limit(qps), qps)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !lim.Allow() {
			logger.L().Debug("rate_limited", "path", r.URL.Path)
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
