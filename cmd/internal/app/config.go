package app

import (
	"time"

	"fakie/cmd/internal/migrate"
	"fakie/cmd/internal/pgutil"
)

// Store backends for persistence and shared counters.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string
	LogColor  bool

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// Empty DatabaseURL selects the in-memory stores.
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	DBSchema    string

	// If true, /readyz returns 503 unless the DB is configured and reachable.
	ReadinessRequireDB bool

	// AutoMigrate applies pending migrations at startup (Postgres only).
	AutoMigrate bool
	// SeedDemo loads the demo accounts and catalog at startup.
	SeedDemo bool

	// RedisURL is required when RateLimitStore or the session denylist is "redis".
	RedisURL       string
	RateLimitStore string

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int

	MetricsEnabled bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("FAKIE_HTTP_ADDR", "0.0.0.0:3000"),
		LogLevel:  EnvString("FAKIE_LOG_LEVEL", "info"),
		LogFormat: EnvString("FAKIE_LOG_FORMAT", "json"),
		LogColor:  EnvBool("FAKIE_LOG_COLOR", false),

		ReadHeaderTimeout: EnvDuration("FAKIE_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("FAKIE_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("FAKIE_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("FAKIE_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("FAKIE_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("FAKIE_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("FAKIE_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("FAKIE_DB_MIN_CONNS", 0),
		DBSchema:    EnvString(migrate.SchemaEnv, pgutil.DefaultSchema),

		ReadinessRequireDB: EnvBool("FAKIE_READINESS_REQUIRE_DB", false),
		AutoMigrate:        EnvBool("FAKIE_AUTO_MIGRATE", false),
		SeedDemo:           EnvBool("FAKIE_SEED_DEMO", false),

		RedisURL:       EnvString("FAKIE_REDIS_URL", ""),
		RateLimitStore: EnvString("FAKIE_RATELIMIT_STORE", BackendMemory),

		CORSAllowedOrigins:   EnvList("FAKIE_CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
		CORSAllowCredentials: EnvBool("FAKIE_CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAgeSeconds:    EnvInt("FAKIE_CORS_MAX_AGE_SECONDS", 600),

		MetricsEnabled: EnvBool("FAKIE_METRICS_ENABLED", true),
	}
}
