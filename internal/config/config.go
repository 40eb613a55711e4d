package config

// Database drivers understood by the server.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"   validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"       validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Events    EventsConfig    `mapstructure:"events"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                int      `mapstructure:"port"                  validate:"required,gt=0,lt=65536"`
	LogLevel            string   `mapstructure:"log_level"             validate:"required,oneof=debug info warn error"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds"  validate:"gte=1"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds" validate:"gte=1"`
	CORSAllowedOrigins  []string `mapstructure:"cors_allowed_origins"`
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable it only behind a proxy that overwrites those headers,
	// otherwise clients can pick their own rate limit key.
	TrustProxyHeaders bool `mapstructure:"trust_proxy_headers"`
}

// DatabaseConfig selects the storage backend and how to reach it.
// URL is required for every driver except memory.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=mongo postgres memory"`
	URL    string `mapstructure:"url"    validate:"required_unless=Driver memory,omitempty,url"`
	// Name is the Mongo database name; ignored by the other drivers.
	Name string `mapstructure:"name" validate:"required_if=Driver mongo"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=525600"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
}

// CacheConfig configures the optional Redis stats cache.
// An empty RedisAddr disables caching.
type CacheConfig struct {
	RedisAddr       string `mapstructure:"redis_addr"`
	RedisPassword   string `mapstructure:"redis_password"`
	RedisDB         int    `mapstructure:"redis_db"          validate:"gte=0"`
	StatsTTLSeconds int    `mapstructure:"stats_ttl_seconds" validate:"gte=1"`
}

// Enabled reports whether a Redis server is configured.
func (c CacheConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// RateLimitConfig configures the Redis-backed limiter on the public auth
// endpoints. It is only active when both Enabled is set and a Redis server is
// configured in CacheConfig.
type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	Requests      int  `mapstructure:"requests"       validate:"gte=1"`
	WindowSeconds int  `mapstructure:"window_seconds" validate:"gte=1"`
}

// EventsConfig configures the optional NATS publisher for task events.
// An empty NATSURL disables publishing.
type EventsConfig struct {
	NATSURL       string `mapstructure:"nats_url"       validate:"omitempty,url"`
	SubjectPrefix string `mapstructure:"subject_prefix" validate:"required"`
}
