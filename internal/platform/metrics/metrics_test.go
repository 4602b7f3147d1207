package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.CatalogQueries.WithLabelValues("memory", "miss").Inc()
	m.PreloadOutcomes.WithLabelValues("resolved").Add(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PreloadOutcomes.WithLabelValues("resolved")))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `library3d_catalog_queries_total{cache="miss",source="memory"} 1`)
	assert.Contains(t, body, `library3d_preload_outcomes_total{outcome="resolved"} 2`)
	assert.Contains(t, body, "go_goroutines")
}

func TestNew_Independent(t *testing.T) {
	a, b := New(), New()
	a.HTTPRequests.WithLabelValues("GET", "200").Inc()

	assert.Equal(t, 0.0, testutil.ToFloat64(b.HTTPRequests.WithLabelValues("GET", "200")))
}
