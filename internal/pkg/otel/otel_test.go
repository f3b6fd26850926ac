package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestGetTracerDefaultsToNoop(t *testing.T) {
	tracer = nil
	_, span := GetTracer().Start(context.Background(), "noop")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
}

func TestSetupWithoutCollector(t *testing.T) {
	shutdown, err := Setup(context.Background(), "payja-lending", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupWithCollector(t *testing.T) {
	shutdown, err := Setup(context.Background(), "payja-lending", "localhost:4318")
	require.NoError(t, err)
	t.Cleanup(func() { tracer = nil })

	_, span := GetTracer().Start(context.Background(), "settlement")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	_, ok := otel.GetMeterProvider().(*sdkmetric.MeterProvider)
	assert.True(t, ok)

	// nothing listens on the collector port, so only the call is exercised
	_ = shutdown(context.Background())
}
