package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	previous := log
	SetLogger(zap.New(core))
	t.Cleanup(func() { log = previous })
	return logs
}

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "abc123")
	assert.Equal(t, "abc123", GetTraceID(ctx))
	assert.Equal(t, "", GetTraceID(context.Background()))
}

func TestCtxInfoAddsContextFields(t *testing.T) {
	logs := observe(t, zap.DebugLevel)

	ctx := WithRequestID(WithTraceID(context.Background(), "trace-1"), "req-1")
	CtxInfo(ctx, "session resolved", zap.String("session_id", "s1"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "session resolved", entry.Message)
	assert.Equal(t, "s1", fields["session_id"])
	assert.Equal(t, "trace-1", fields["trace_id"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, serviceName, fields["service_name"])
}

func TestCtxErrorCarriesError(t *testing.T) {
	logs := observe(t, zap.DebugLevel)

	CtxError(context.Background(), "bank call failed", errors.New("timeout"))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zap.ErrorLevel, logs.All()[0].Level)
	assert.Equal(t, "timeout", logs.All()[0].ContextMap()["error"])
}

func TestLevelFiltering(t *testing.T) {
	logs := observe(t, zap.InfoLevel)

	Debug("hidden")
	Info("shown")
	Warn("shown too")

	assert.Equal(t, 2, logs.Len())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zap.DebugLevel,
		"WARN":  zap.WarnLevel,
		"error": zap.ErrorLevel,
		"info":  zap.InfoLevel,
		"":      zap.InfoLevel,
		"bogus": zap.InfoLevel,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, parseLevel(in))
		})
	}
}
