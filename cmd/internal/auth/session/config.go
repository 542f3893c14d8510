package session

import (
	"fmt"
	"os"
	"strings"
	"time"

	"fakie/cmd/security/token"
)

// DenylistMode selects the revocation backend.
type DenylistMode string

const (
	DenylistOff    DenylistMode = "off"
	DenylistMemory DenylistMode = "memory"
	DenylistRedis  DenylistMode = "redis"
)

// Config defines runtime configuration for session tokens.
type Config struct {
	// Issuer is the value set in (and required of) the "iss" claim.
	Issuer string

	// TTL is the lifetime of a session token and of the auth cookie.
	TTL time.Duration

	// ClockSkew is the leeway applied to exp/iat checks.
	ClockSkew time.Duration

	// Secret is the HMAC-SHA256 signing key (at least token.MinSecretBytes).
	Secret []byte

	// Denylist selects whether logout revokes tokens server-side.
	Denylist DenylistMode
}

// DefaultConfig returns the baseline: 30 minute tokens, no skew, no denylist.
// Secret is left empty and must be supplied.
func DefaultConfig() Config {
	return Config{
		Issuer:    "fakie",
		TTL:       30 * time.Minute,
		ClockSkew: 0,
		Denylist:  DenylistOff,
	}
}

// Validate checks the invariants NewManager relies on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Issuer) == "" {
		return fmt.Errorf("%w: empty issuer", ErrConfig)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("%w: ttl must be positive", ErrConfig)
	}
	if c.ClockSkew < 0 || c.ClockSkew >= c.TTL {
		return fmt.Errorf("%w: clock skew out of range", ErrConfig)
	}
	if _, err := token.CheckKey(c.Secret, token.MinSecretBytes); err != nil {
		return fmt.Errorf("%w: secret: %v", ErrConfig, err)
	}
	switch c.Denylist {
	case DenylistOff, DenylistMemory, DenylistRedis:
	default:
		return fmt.Errorf("%w: unknown denylist mode %q", ErrConfig, c.Denylist)
	}
	return nil
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - FAKIE_SESSION_SECRET (>= 32 bytes)
//
// Optional:
//   - FAKIE_SESSION_ISSUER
//   - FAKIE_SESSION_TTL (Go duration)
//   - FAKIE_SESSION_CLOCK_SKEW (Go duration)
//   - FAKIE_SESSION_DENYLIST (off|memory|redis)
//
// Errors wrap ErrConfig.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("FAKIE_SESSION_ISSUER")); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("FAKIE_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("%w: FAKIE_SESSION_TTL=%q", ErrConfig, v)
		}
		cfg.TTL = d
	}

	if v := os.Getenv("FAKIE_SESSION_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("%w: FAKIE_SESSION_CLOCK_SKEW=%q", ErrConfig, v)
		}
		cfg.ClockSkew = d
	}

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("FAKIE_SESSION_DENYLIST"))); v != "" {
		cfg.Denylist = DenylistMode(v)
	}

	secret, err := token.SigningKeyFromEnv(token.SessionSecretEnvKey, token.MinSecretBytes)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrConfig, token.SessionSecretEnvKey, err)
	}
	cfg.Secret = secret

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
