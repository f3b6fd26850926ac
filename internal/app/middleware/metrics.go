package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// NewMetricMiddleware records latency, sizes and outcome counters per route.
func NewMetricMiddleware(meter metric.Meter) gin.HandlerFunc {
	latency, _ := meter.Int64Histogram(
		"http.server.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("The latency of HTTP requests."),
	)
	requests, _ := meter.Int64Counter(
		"http.server.requests_total",
		metric.WithDescription("The total number of HTTP requests."),
	)
	successes, _ := meter.Int64Counter(
		"http.server.success_requests_total",
		metric.WithDescription("The total number of successful HTTP requests."),
	)
	failures, _ := meter.Int64Counter(
		"http.server.error_requests_total",
		metric.WithDescription("The total number of failed HTTP requests."),
	)
	requestSize, _ := meter.Int64Histogram(
		"http.server.request_size_bytes",
		metric.WithUnit("bytes"),
		metric.WithDescription("The size of HTTP requests in bytes."),
	)
	responseSize, _ := meter.Int64Histogram(
		"http.server.response_size_bytes",
		metric.WithUnit("bytes"),
		metric.WithDescription("The size of HTTP responses in bytes."),
	)

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		attrs := metric.WithAttributes(
			semconv.HTTPRouteKey.String(c.FullPath()),
			semconv.HTTPMethodKey.String(c.Request.Method),
			semconv.HTTPStatusCodeKey.Int(status),
			attribute.String("http.client_ip", c.ClientIP()),
		)

		latency.Record(ctx, time.Since(start).Milliseconds(), attrs)
		requests.Add(ctx, 1, attrs)
		if c.Request.ContentLength > 0 {
			requestSize.Record(ctx, c.Request.ContentLength, attrs)
		}
		// Size is -1 when nothing was written.
		if size := c.Writer.Size(); size > 0 {
			responseSize.Record(ctx, int64(size), attrs)
		}

		if status >= 200 && status < 400 {
			successes.Add(ctx, 1, attrs)
		} else {
			failures.Add(ctx, 1, attrs)
		}
	}
}
