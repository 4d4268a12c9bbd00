package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestResolveTotalByTier(t *testing.T) {
	before := testutil.ToFloat64(ResolveTotal.WithLabelValues("nearest"))
	ResolveTotal.WithLabelValues("nearest").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ResolveTotal.WithLabelValues("nearest")))
}

func TestHandlerExposesRegisteredMetrics(t *testing.T) {
	SeedRecordsTotal.WithLabelValues("inserted").Inc()
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "fews_seed_records_total")
}
