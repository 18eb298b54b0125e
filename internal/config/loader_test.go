package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/internal/constants"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "intake.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
database:
  postgres:
    host: localhost
    port: 5432
    user: intake
    dbname: intake
mail:
  provider: log
`

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, constants.DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 5, cfg.RateLimit.Limit)
	assert.Equal(t, 60*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, constants.RateLimitStoreMemory, cfg.RateLimit.Store)
	assert.Equal(t, constants.KeySourceForwarded, cfg.RateLimit.KeySource)
	assert.Equal(t, constants.DefaultMailTo, cfg.Mail.To)
	assert.Equal(t, constants.DefaultMailFrom, cfg.Mail.From)
	assert.Equal(t, 10*time.Second, cfg.Sinks.Timeout)
	assert.False(t, cfg.Admin.SurfaceReadErrors)
	assert.Equal(t, constants.ServiceName, cfg.Tracing.ServiceName)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("RESEND_API_KEY", "re_test")
	t.Setenv("CONTACT_EMAIL", "sales@example.com")
	t.Setenv("BROKER_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "re_test", cfg.Mail.APIKey)
	assert.Equal(t, "sales@example.com", cfg.Mail.To)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Broker.Kafka.Brokers)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, minimalConfig+`
ratelimit:
  limit: 0
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ratelimit.limit")
}
