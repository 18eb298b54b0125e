package constants

import "time"

const (
	ServiceName = "intake-service"
)

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultHTTPTimeout = 10 * time.Second
	DefaultSinkTimeout = 10 * time.Second
)

const (
	DefaultRateLimit   = 5
	DefaultRateWindow  = 60 * time.Second
	UnknownClientKey   = "unknown"
	RateLimitKeyPrefix = "ratelimit:contact:"
)

const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

const (
	KeySourceForwarded  = "forwarded"
	KeySourceRemoteAddr = "remote_addr"
)

const (
	DriverPostgres = "postgres"
	DriverMongoDB  = "mongodb"
)

const (
	DefaultMongoDBName    = "intake"
	SubmissionsTable      = "contact_submissions"
	SubmissionsCollection = "contact_submissions"
)

const (
	MailProviderResend = "resend"
	MailProviderLog    = "log"

	DefaultResendEndpoint = "https://api.resend.com/emails"
	DefaultMailFrom       = "GeoSync Agency <contact@geosync.agency>"
	DefaultMailTo         = "contact@geosync.agency"
	NotProvided           = "Not provided"
)

const (
	SinkEmail   = "email"
	SinkStorage = "storage"
	SinkEvents  = "events"
)

const (
	ShutdownTimeout = 5 * time.Second
)

// MaxRequestBodyBytes caps the intake body. The largest valid submission is
// well under 16 KiB.
const MaxRequestBodyBytes = 64 << 10

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)
