package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"intake/internal/constants"
)

func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "30s")

	viper.SetDefault("database.driver", constants.DriverPostgres)
	viper.SetDefault("database.postgres.sslmode", "disable")
	viper.SetDefault("database.mongodb.database", constants.DefaultMongoDBName)

	viper.SetDefault("ratelimit.limit", constants.DefaultRateLimit)
	viper.SetDefault("ratelimit.window", constants.DefaultRateWindow)
	viper.SetDefault("ratelimit.store", constants.RateLimitStoreMemory)
	viper.SetDefault("ratelimit.key_source", constants.KeySourceForwarded)

	viper.SetDefault("mail.provider", constants.MailProviderResend)
	viper.SetDefault("mail.endpoint", constants.DefaultResendEndpoint)
	viper.SetDefault("mail.from", constants.DefaultMailFrom)
	viper.SetDefault("mail.to", constants.DefaultMailTo)
	viper.SetDefault("mail.timezone", "UTC")
	viper.SetDefault("mail.retry.max_attempts", 1)
	viper.SetDefault("mail.retry.initial_interval", "200ms")
	viper.SetDefault("mail.retry.max_interval", "2s")
	viper.SetDefault("mail.retry.multiplier", 2.0)

	viper.SetDefault("sinks.timeout", constants.DefaultSinkTimeout)

	viper.SetDefault("admin.rate_limit.rps", 5.0)
	viper.SetDefault("admin.rate_limit.burst", 10)
	viper.SetDefault("admin.rate_limit.cleanup_interval", 300)
	viper.SetDefault("admin.rate_limit.max_age", 600)

	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", "60s")
	viper.SetDefault("circuit_breaker.timeout", "30s")
	viper.SetDefault("circuit_breaker.failure_ratio", 0.5)
	viper.SetDefault("circuit_breaker.min_requests", 3)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

func bindEnvVariables() {
	viper.BindEnv("server.port", "SERVER_PORT")

	viper.BindEnv("database.driver", "DATABASE_DRIVER")
	viper.BindEnv("database.postgres.host", "DATABASE_POSTGRES_HOST")
	viper.BindEnv("database.postgres.port", "DATABASE_POSTGRES_PORT")
	viper.BindEnv("database.postgres.user", "DATABASE_POSTGRES_USER")
	viper.BindEnv("database.postgres.password", "DATABASE_POSTGRES_PASSWORD")
	viper.BindEnv("database.postgres.dbname", "DATABASE_POSTGRES_DBNAME")
	viper.BindEnv("database.postgres.sslmode", "DATABASE_POSTGRES_SSLMODE")

	viper.BindEnv("database.mongodb.uri", "DATABASE_MONGODB_URI")
	viper.BindEnv("database.mongodb.database", "DATABASE_MONGODB_DATABASE")

	viper.BindEnv("database.redis.host", "DATABASE_REDIS_HOST")
	viper.BindEnv("database.redis.port", "DATABASE_REDIS_PORT")
	viper.BindEnv("database.redis.password", "DATABASE_REDIS_PASSWORD")

	viper.BindEnv("mail.api_key", "MAIL_API_KEY", "RESEND_API_KEY")
	viper.BindEnv("mail.to", "MAIL_TO", "CONTACT_EMAIL")

	viper.BindEnv("admin.jwt_secret", "ADMIN_JWT_SECRET")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")

	viper.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	viper.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.service_name", "TRACING_SERVICE_NAME")
}

func applyEnvOverrides(cfg *Config) error {
	if brokersEnv := viper.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}

	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = constants.ServiceName
	}

	return nil
}
