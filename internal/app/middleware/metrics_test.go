package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetricMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	router := gin.New()
	router.Use(NewMetricMiddleware(provider.Meter("test")))
	router.POST("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	router.POST("/fail", func(c *gin.Context) { c.JSON(http.StatusConflict, gin.H{"ok": false}) })

	for _, path := range []string{"/ok", "/ok", "/fail"} {
		req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(`{"a":1}`))
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	metrics := collect(t, reader)
	assert.Equal(t, int64(3), sumOf(t, metrics["http.server.requests_total"]))
	assert.Equal(t, int64(2), sumOf(t, metrics["http.server.success_requests_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["http.server.error_requests_total"]))
	assert.Contains(t, metrics, "http.server.latency")
	assert.Contains(t, metrics, "http.server.request_size_bytes")
	assert.Contains(t, metrics, "http.server.response_size_bytes")
}
