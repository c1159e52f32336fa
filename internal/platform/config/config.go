package config

import (
	"os"
	"strconv"
	"time"

	platformstrings "hackportal/pkg/platform/strings"
)

// Config aggregates process configuration read once at startup.
type Config struct {
	Server   Server
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Admin    AdminConfig
	Policy    PolicyConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string
	ShutdownTimeout   time.Duration
	// TrustProxyHeaders reads client addresses from X-Forwarded-For.
	TrustProxyHeaders bool
}

// DatabaseConfig points at PostgreSQL. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig backs the token revocation list. An empty URL keeps it in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables streaming audit events. No brokers disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// AuthConfig covers identity resolution and sign-in.
type AuthConfig struct {
	JWTSigningKey string
	Issuer        string
	TokenTTL      time.Duration
	// AssertionSecret verifies sign-in assertions minted by the upstream identity provider.
	AssertionSecret    string
	AllowedEmailDomain string
}

// AdminConfig covers admin bootstrap.
type AdminConfig struct {
	// SetupKeyHash is a bcrypt hash of the one-time setup key. Empty disables /setup/admin.
	SetupKeyHash    string
	BootstrapEmails []string
}

// PolicyConfig holds product-level switches for registration rules.
type PolicyConfig struct {
	AdminsMayRegisterOwn bool
	EnforceCapacity      bool
}

// RateLimitConfig throttles sign-in and admin setup attempts per client address.
type RateLimitConfig struct {
	Disabled        bool
	SignInPerMinute int
	SetupPerHour    int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:              getEnv("HACKPORTAL_ADDR", ":8080"),
			ShutdownTimeout:   getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			TrustProxyHeaders: os.Getenv("TRUST_PROXY_HEADERS") == "true",
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: platformstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_AUDIT_TOPIC", "hackportal.audit"),
		},
		Auth: AuthConfig{
			// Development defaults; override in production.
			JWTSigningKey:      getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:             getEnv("JWT_ISSUER", "hackportal"),
			TokenTTL:           getDuration("TOKEN_TTL", 8*time.Hour),
			AssertionSecret:    getEnv("IDP_ASSERTION_SECRET", "dev-idp-secret-change-in-production"),
			AllowedEmailDomain: getEnv("ALLOWED_EMAIL_DOMAIN", "final.co.il"),
		},
		Admin: AdminConfig{
			SetupKeyHash:    os.Getenv("SETUP_KEY_HASH"),
			BootstrapEmails: platformstrings.SplitFolded(os.Getenv("BOOTSTRAP_ADMIN_EMAILS")),
		},
		Policy: PolicyConfig{
			AdminsMayRegisterOwn: os.Getenv("POLICY_ADMINS_MAY_REGISTER_OWN") == "true",
			EnforceCapacity:      os.Getenv("POLICY_ENFORCE_CAPACITY") == "true",
		},
		RateLimit: RateLimitConfig{
			Disabled:        os.Getenv("RATE_LIMIT_DISABLED") == "true",
			SignInPerMinute: getPositiveInt("RATE_LIMIT_SIGN_IN_PER_MINUTE", 10),
			SetupPerHour:    getPositiveInt("RATE_LIMIT_SETUP_PER_HOUR", 5),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// getPositiveInt ignores values below 1, which would block every request.
func getPositiveInt(key string, fallback int) int {
	if v := getInt(key, fallback); v >= 1 {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
