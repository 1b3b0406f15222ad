package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	StorageDriver     string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	GracePeriod       time.Duration
	ServerPort        string
	ServerHost        string
	Environment       string
	ShutdownTimeout   time.Duration

	JWTSecret         string
	JWTAccessTokenTTL time.Duration

	RedisURL                   string
	RateLimitEnabled           bool
	RateLimitIPAttempts        int
	RateLimitIPWindow          time.Duration
	RateLimitLifecycleAttempts int
	RateLimitLifecycleWindow   time.Duration
	RateLimitBlockDuration     time.Duration

	LogLevel               string
	LogFormat              string
	LogCorrelationIDHeader string
	LogEnableRequestLog    bool

	MetricsEnabled bool

	// CORS configuration
	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Seed configuration
	SeedUsers        int
	SeedPostsPerUser int
}

var (
	ErrMissingDatabaseURL   = errors.New("DATABASE_URL is required for the postgres storage driver")
	ErrInvalidStorageDriver = errors.New("STORAGE_DRIVER must be postgres or memory")
	ErrInvalidGracePeriod   = errors.New("GRACE_PERIOD_HOURS must be a non-negative integer")
	ErrInvalidWindow        = errors.New("invalid rate limit window")
)

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		StorageDriver:     getEnvOrDefault("STORAGE_DRIVER", StorageDriverPostgres),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBMaxOpenConns:    getEnvOrDefaultInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvOrDefaultInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvOrDefaultDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		ServerPort:        getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:        getEnvOrDefault("SERVER_HOST", "localhost"),
		Environment:       getEnvOrDefault("ENV", "development"),
		ShutdownTimeout:   getEnvOrDefaultDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTAccessTokenTTL: getEnvOrDefaultDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute),

		RedisURL:                   getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		RateLimitEnabled:           getEnvOrDefaultBool("RATE_LIMIT_ENABLED", false),
		RateLimitIPAttempts:        getEnvOrDefaultInt("RATE_LIMIT_IP_ATTEMPTS", 300),
		RateLimitLifecycleAttempts: getEnvOrDefaultInt("RATE_LIMIT_LIFECYCLE_ATTEMPTS", 20),

		LogLevel:               getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:              getEnvOrDefault("LOG_FORMAT", "json"),
		LogCorrelationIDHeader: getEnvOrDefault("LOG_CORRELATION_ID_HEADER", "X-Correlation-ID"),
		LogEnableRequestLog:    getEnvOrDefaultBool("LOG_ENABLE_REQUEST_LOG", true),

		MetricsEnabled: getEnvOrDefaultBool("METRICS_ENABLED", true),

		CORSEnabled:          getEnvOrDefaultBool("CORS_ENABLED", true),
		CORSAllowCredentials: getEnvOrDefaultBool("CORS_ALLOW_CREDENTIALS", true),
		CORSAllowedOrigins:   parseAllowedOrigins(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "")),

		SeedUsers:        getEnvOrDefaultInt("SEED_USERS", 10),
		SeedPostsPerUser: getEnvOrDefaultInt("SEED_POSTS_PER_USER", 3),
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, ErrMissingDatabaseURL
		}
	case StorageDriverMemory:
	default:
		return nil, ErrInvalidStorageDriver
	}

	grace, err := parseGracePeriod(getEnvOrDefault("GRACE_PERIOD_HOURS", "24"))
	if err != nil {
		return nil, err
	}
	cfg.GracePeriod = grace

	ipWindow, err := parseSeconds(getEnvOrDefault("RATE_LIMIT_IP_WINDOW", "60"))
	if err != nil {
		return nil, ErrInvalidWindow
	}
	cfg.RateLimitIPWindow = ipWindow

	lifecycleWindow, err := parseSeconds(getEnvOrDefault("RATE_LIMIT_LIFECYCLE_WINDOW", "3600"))
	if err != nil {
		return nil, ErrInvalidWindow
	}
	cfg.RateLimitLifecycleWindow = lifecycleWindow

	blockDuration, err := parseSeconds(getEnvOrDefault("RATE_LIMIT_BLOCK_DURATION", "900"))
	if err != nil {
		return nil, ErrInvalidWindow
	}
	cfg.RateLimitBlockDuration = blockDuration

	if cfg.JWTSecret == "" {
		logMissing("JWT_SECRET, bearer tokens will not identify actors")
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		// plain numbers are seconds
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * time.Second
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return d
	}
	return defaultValue
}

func parseGracePeriod(value string) (time.Duration, error) {
	hours, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || hours < 0 {
		return 0, ErrInvalidGracePeriod
	}
	return time.Duration(hours) * time.Hour, nil
}

func parseSeconds(value string) (time.Duration, error) {
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

func parseAllowedOrigins(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}

func logMissing(msg string) {
	fmt.Fprintf(os.Stderr, "[config] missing %s\n", msg)
}
