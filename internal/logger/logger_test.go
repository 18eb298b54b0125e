package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"intake/internal/config"
	"intake/pkg/logging"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		for _, level := range []string{"debug", "info", "warn", "error", ""} {
			log, err := New(config.LoggingConfig{Level: level, Format: format})
			require.NoError(t, err)
			assert.NotNil(t, log)
		}
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core), "intake-service")

	ctx := logging.WithRequestID(context.Background(), "req-42")
	ctx = logging.WithClientID(ctx, "203.0.113.7")
	log.ErrorwCtx(ctx, "sink failed", "sink", "email")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "sink failed", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "203.0.113.7", fields["client_id"])
	assert.Equal(t, "intake-service", fields["service_name"])
	assert.Equal(t, "email", fields["sink"])
}
