package app

import (
	"errors"
	"fmt"
	"strings"

	"fakie/cmd/internal/migrate"
	"fakie/cmd/security/token"
)

// ValidateSecurityConfig enforces FAKIE's security policy at startup.
// Fail-fast: the server never starts with a missing or short session secret.
func ValidateSecurityConfig(cfg Config) error {
	if _, err := token.SigningKeyFromEnv(token.SessionSecretEnvKey, token.MinSecretBytes); err != nil {
		switch {
		case errors.Is(err, token.ErrKeyMissing):
			return fmt.Errorf("security policy: %s is missing", token.SessionSecretEnvKey)
		case errors.Is(err, token.ErrKeyTooShort):
			return fmt.Errorf("security policy: %s is too short (min %d bytes)", token.SessionSecretEnvKey, token.MinSecretBytes)
		default:
			return err
		}
	}

	if cfg.CORSAllowCredentials {
		for _, o := range cfg.CORSAllowedOrigins {
			if strings.TrimSpace(o) == "*" {
				return errors.New("security policy: FAKIE_CORS_ALLOWED_ORIGINS=* cannot be combined with credentials")
			}
		}
	}

	// The migrations and the stores must agree on one schema.
	schema, err := migrate.Schema()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.DBSchema != "" && cfg.DBSchema != schema {
		return fmt.Errorf("config: store schema %q differs from migration schema %q", cfg.DBSchema, schema)
	}

	switch cfg.RateLimitStore {
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(cfg.RedisURL) == "" {
			return errors.New("config: FAKIE_RATELIMIT_STORE=redis requires FAKIE_REDIS_URL")
		}
	default:
		return fmt.Errorf("config: unknown FAKIE_RATELIMIT_STORE %q", cfg.RateLimitStore)
	}

	return nil
}
