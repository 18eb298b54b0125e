package config

import (
	"time"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	RateLimit      RateLimitConfig      `mapstructure:"ratelimit"`
	Mail           MailConfig           `mapstructure:"mail"`
	Sinks          SinksConfig          `mapstructure:"sinks"`
	Broker         BrokerConfig         `mapstructure:"broker"`
	Screening      ScreeningConfig      `mapstructure:"screening"`
	Admin          AdminConfig          `mapstructure:"admin"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Tracing        TracingConfig        `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Driver        string         `mapstructure:"driver"`
	RunMigrations bool           `mapstructure:"run_migrations"`
	Postgres      PostgresConfig `mapstructure:"postgres"`
	MongoDB       MongoDBConfig  `mapstructure:"mongodb"`
	Redis         RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// RateLimitConfig drives the fixed-window limiter in front of the contact endpoint.
type RateLimitConfig struct {
	Limit     int           `mapstructure:"limit"`
	Window    time.Duration `mapstructure:"window"`
	Store     string        `mapstructure:"store"`      // "memory" or "redis"
	KeySource string        `mapstructure:"key_source"` // "forwarded" or "remote_addr"
}

type MailConfig struct {
	Provider string      `mapstructure:"provider"` // "resend" or "log"
	APIKey   string      `mapstructure:"api_key"`
	Endpoint string      `mapstructure:"endpoint"`
	From     string      `mapstructure:"from"`
	To       string      `mapstructure:"to"`
	Timezone string      `mapstructure:"timezone"`
	Retry    RetryConfig `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
}

type SinksConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type BrokerConfig struct {
	Type  string      `mapstructure:"type"`
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers   []string `mapstructure:"brokers"`
	LeadTopic string   `mapstructure:"lead_topic"`
}

type ScreeningConfig struct {
	Rules []ScreeningRule `mapstructure:"rules"`
}

type ScreeningRule struct {
	Name       string `mapstructure:"name"`
	Expression string `mapstructure:"expression"`
}

type AdminConfig struct {
	JWTSecret         string               `mapstructure:"jwt_secret"`
	SurfaceReadErrors bool                 `mapstructure:"surface_read_errors"`
	RateLimit         AdminRateLimitConfig `mapstructure:"rate_limit"`
}

type AdminRateLimitConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
	CleanupInterval int     `mapstructure:"cleanup_interval"`
	MaxAge          int     `mapstructure:"max_age"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	OTLP        OTLPConfig    `mapstructure:"otlp"`
	Sampler     SamplerConfig `mapstructure:"sampler"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"`
	Param float64 `mapstructure:"param"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
