package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/reports/:kind", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for _, path := range []string{"/reports/weekly", "/reports/history", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("/reports/:kind", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("unmatched", "404")))
}

func TestReportAndRecordCounters(t *testing.T) {
	m := New()
	m.ReportBuilt("weekly", "ok")
	m.ReportBuilt("weekly", "ok")
	m.ReportBuilt("advice", "insufficient_data")
	m.RecordSubmitted("duplicate")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reportsTotal.WithLabelValues("weekly", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reportsTotal.WithLabelValues("advice", "insufficient_data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordsSaved.WithLabelValues("duplicate")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ReportBuilt("weekly", "ok") })
}

func TestHandler_ExposesRegistry(t *testing.T) {
	m := New()
	m.ReportBuilt("all_users", "no_data")
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `sleep_reports_total{kind="all_users",status="no_data"} 1`))
}
