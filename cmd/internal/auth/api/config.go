package authapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"fakie/cmd/internal/ratelimit"
)

// Config controls auth API behavior and security defaults.
type Config struct {
	TrustProxy   bool
	MaxBodyBytes int64

	CookieSecure   bool
	CookieDomain   string
	CookieSameSite http.SameSite

	// Login failures are delayed by a uniformly random duration in [min, max].
	FailureDelayMin time.Duration
	FailureDelayMax time.Duration

	RegisterRule ratelimit.Rule
	LoginRule    ratelimit.Rule

	// AuditKey keys the fingerprints of login identifiers in audit events.
	AuditKey []byte
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:    1 << 20, // 1 MiB
		CookieSecure:    true,
		CookieSameSite:  http.SameSiteStrictMode,
		FailureDelayMin: 300 * time.Millisecond,
		FailureDelayMax: 500 * time.Millisecond,
		RegisterRule:    ratelimit.DefaultRegisterRule(),
		LoginRule:       ratelimit.DefaultLoginRule(),
	}
}

// LoadConfigFromEnv loads auth config from environment variables with safe defaults.
func LoadConfigFromEnv() Config {
	def := DefaultConfig()
	cfg := Config{
		TrustProxy:      envBool("FAKIE_AUTH_TRUST_PROXY", false),
		MaxBodyBytes:    envInt64("FAKIE_AUTH_MAX_BODY_BYTES", def.MaxBodyBytes),
		CookieSecure:    envBool("FAKIE_AUTH_COOKIE_SECURE", def.CookieSecure),
		CookieDomain:    strings.TrimSpace(os.Getenv("FAKIE_AUTH_COOKIE_DOMAIN")),
		CookieSameSite:  parseSameSite(os.Getenv("FAKIE_AUTH_COOKIE_SAMESITE")),
		FailureDelayMin: envDuration("FAKIE_AUTH_FAILURE_DELAY_MIN", def.FailureDelayMin),
		FailureDelayMax: envDuration("FAKIE_AUTH_FAILURE_DELAY_MAX", def.FailureDelayMax),
		RegisterRule:    ratelimit.RuleFromEnv("register", def.RegisterRule),
		LoginRule:       ratelimit.RuleFromEnv("login", def.LoginRule),
	}
	if v := strings.TrimSpace(os.Getenv("FAKIE_AUDIT_HMAC_KEY")); v != "" {
		cfg.AuditKey = []byte(v)
	}

	// SameSite=None cookies are rejected by browsers unless Secure.
	if cfg.CookieSameSite == http.SameSiteNoneMode {
		cfg.CookieSecure = true
	}
	if cfg.FailureDelayMax < cfg.FailureDelayMin {
		cfg.FailureDelayMax = cfg.FailureDelayMin
	}

	return cfg
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	case "default":
		return http.SameSiteDefaultMode
	default:
		return http.SameSiteStrictMode
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}
