package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"intake/internal/constants"
	"intake/pkg/cel"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errs []error

	if err := validateServer(cfg.Server); err != nil {
		errs = append(errs, err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		errs = append(errs, err)
	}

	if err := validateRateLimit(cfg.RateLimit, cfg.Database.Redis); err != nil {
		errs = append(errs, err)
	}

	if err := validateMail(cfg.Mail); err != nil {
		errs = append(errs, err)
	}

	if cfg.Sinks.Timeout <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "sinks.timeout",
			Message: "sink timeout must be positive",
		})
	}

	if err := validateBroker(cfg.Broker); err != nil {
		errs = append(errs, err)
	}

	if err := validateScreening(cfg.Screening); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeout <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeout <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	switch cfg.Driver {
	case constants.DriverPostgres:
		return validatePostgres(cfg.Postgres)
	case constants.DriverMongoDB:
		return validateMongoDB(cfg.MongoDB)
	default:
		return &ValidationError{
			Field:   "database.driver",
			Message: fmt.Sprintf("unknown database driver: %s (supported: postgres, mongodb)", cfg.Driver),
		}
	}
}

func validatePostgres(cfg PostgresConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.postgres.host",
			Message: "PostgreSQL host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.postgres.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.User == "" {
		return &ValidationError{
			Field:   "database.postgres.user",
			Message: "PostgreSQL user is required",
		}
	}

	if cfg.DBName == "" {
		return &ValidationError{
			Field:   "database.postgres.dbname",
			Message: "PostgreSQL database name is required",
		}
	}

	validSSLModes := map[string]bool{
		"disable": true, "allow": true, "prefer": true,
		"require": true, "verify-ca": true, "verify-full": true,
	}
	if cfg.SSLMode != "" && !validSSLModes[strings.ToLower(cfg.SSLMode)] {
		return &ValidationError{
			Field:   "database.postgres.sslmode",
			Message: fmt.Sprintf("invalid SSL mode: %s (valid: disable, allow, prefer, require, verify-ca, verify-full)", cfg.SSLMode),
		}
	}

	return nil
}

func validateMongoDB(cfg MongoDBConfig) error {
	if cfg.URI == "" {
		return &ValidationError{
			Field:   "database.mongodb.uri",
			Message: "MongoDB URI is required",
		}
	}

	if !strings.HasPrefix(cfg.URI, "mongodb://") && !strings.HasPrefix(cfg.URI, "mongodb+srv://") {
		return &ValidationError{
			Field:   "database.mongodb.uri",
			Message: "MongoDB URI must start with mongodb:// or mongodb+srv://",
		}
	}

	if cfg.Database == "" {
		return &ValidationError{
			Field:   "database.mongodb.database",
			Message: "MongoDB database name is required",
		}
	}

	return nil
}

func validateRedis(cfg RedisConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.redis.host",
			Message: "Redis host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateRateLimit(cfg RateLimitConfig, redis RedisConfig) error {
	if cfg.Limit < 1 {
		return &ValidationError{
			Field:   "ratelimit.limit",
			Message: fmt.Sprintf("limit must be at least 1, got %d", cfg.Limit),
		}
	}

	if cfg.Window <= 0 {
		return &ValidationError{
			Field:   "ratelimit.window",
			Message: "window must be positive",
		}
	}

	switch cfg.KeySource {
	case constants.KeySourceForwarded, constants.KeySourceRemoteAddr:
	default:
		return &ValidationError{
			Field:   "ratelimit.key_source",
			Message: fmt.Sprintf("invalid key source: %s (valid: forwarded, remote_addr)", cfg.KeySource),
		}
	}

	switch cfg.Store {
	case constants.RateLimitStoreMemory:
		return nil
	case constants.RateLimitStoreRedis:
		return validateRedis(redis)
	default:
		return &ValidationError{
			Field:   "ratelimit.store",
			Message: fmt.Sprintf("invalid store: %s (valid: memory, redis)", cfg.Store),
		}
	}
}

func validateMail(cfg MailConfig) error {
	switch cfg.Provider {
	case constants.MailProviderResend, constants.MailProviderLog:
	default:
		return &ValidationError{
			Field:   "mail.provider",
			Message: fmt.Sprintf("unknown mail provider: %s (supported: resend, log)", cfg.Provider),
		}
	}

	if cfg.To == "" {
		return &ValidationError{
			Field:   "mail.to",
			Message: "notification recipient is required",
		}
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return &ValidationError{
			Field:   "mail.timezone",
			Message: fmt.Sprintf("unknown timezone: %s", cfg.Timezone),
		}
	}

	if cfg.Retry.MaxAttempts < 0 {
		return &ValidationError{
			Field:   "mail.retry.max_attempts",
			Message: "max_attempts must be non-negative",
		}
	}

	if cfg.Retry.MaxInterval > 0 && cfg.Retry.InitialInterval > 0 && cfg.Retry.MaxInterval < cfg.Retry.InitialInterval {
		return &ValidationError{
			Field:   "mail.retry.max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	if cfg.Retry.Multiplier <= 0 {
		return &ValidationError{
			Field:   "mail.retry.multiplier",
			Message: "multiplier must be positive",
		}
	}

	return nil
}

func validateBroker(cfg BrokerConfig) error {
	switch cfg.Type {
	case "":
		return nil
	case "kafka":
	default:
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unknown broker type: %s (supported: kafka)", cfg.Type),
		}
	}

	if len(cfg.Kafka.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one Kafka broker is required",
		}
	}

	for i, broker := range cfg.Kafka.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.Kafka.LeadTopic == "" {
		return &ValidationError{
			Field:   "broker.kafka.lead_topic",
			Message: "lead topic is required when the kafka broker is enabled",
		}
	}

	return nil
}

func validateScreening(cfg ScreeningConfig) error {
	rules := make([]cel.Rule, 0, len(cfg.Rules))
	for i, r := range cfg.Rules {
		if r.Name == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("screening.rules[%d].name", i),
				Message: "rule name is required",
			}
		}
		rules = append(rules, cel.Rule{Name: r.Name, Expression: r.Expression})
	}

	if _, err := cel.NewScreener(rules); err != nil {
		return &ValidationError{
			Field:   "screening.rules",
			Message: err.Error(),
		}
	}

	return nil
}
