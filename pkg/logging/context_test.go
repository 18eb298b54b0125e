package logging

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetLogFields(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetLogFields(ctx))

	ctx = WithTraceID(ctx, "trace-1")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithServiceName(ctx, "intake-service")

	assert.Equal(t, []interface{}{
		"trace_id", "trace-1",
		"request_id", "req-1",
		"service_name", "intake-service",
	}, GetLogFields(ctx))

	ctx = WithClientID(ctx, "203.0.113.7")
	assert.Equal(t, []interface{}{
		"trace_id", "trace-1",
		"request_id", "req-1",
		"client_id", "203.0.113.7",
		"service_name", "intake-service",
	}, GetLogFields(ctx))
}

func TestWith_DoesNotLeakIntoParent(t *testing.T) {
	parent := WithRequestID(context.Background(), "req-1")
	child := WithRequestID(parent, "req-2")

	assert.Equal(t, "req-1", GetRequestID(parent))
	assert.Equal(t, "req-2", GetRequestID(child))
}

func TestGetters_MissingValues(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetTraceID(ctx))
	assert.Equal(t, "", GetRequestID(ctx))
	assert.Equal(t, "", GetClientID(ctx))
	assert.Equal(t, "", GetServiceName(ctx))
}

func TestEarlyLog(t *testing.T) {
	var buf bytes.Buffer
	l := NewEarlyLogTo(&buf)
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	l.Error("Failed to load config: %v", "no such file")
	l.Warn("plain")

	assert.Equal(t,
		"2026-01-02T03:04:05Z ERROR Failed to load config: no such file\n2026-01-02T03:04:05Z WARN plain\n",
		buf.String())
}
