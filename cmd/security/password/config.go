package password

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Argon2idParams controls Argon2id hashing cost. MemoryKiB is in KiB as
// argon2.IDKey expects.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy bounds accepted passwords.
type Policy struct {
	MinLength int
	MaxLength int
	// RejectVeryWeak enables the small common-pattern blocklist.
	RejectVeryWeak bool
}

// Config is the single configuration surface for this package.
type Config struct {
	Params Argon2idParams
	Policy Policy
}

// DefaultConfig returns the account baseline: 8 to 100 characters, and
// m=19 MiB, t=2, p=1, which costs tens of milliseconds per hash.
func DefaultConfig() Config {
	return Config{
		Params: Argon2idParams{
			MemoryKiB:   19 * 1024,
			Iterations:  2,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: Policy{MinLength: 8, MaxLength: 100},
	}
}

// envUint describes one numeric override and its accepted range.
type envUint struct {
	key    string
	lo, hi uint64
	set    func(*Config, uint64)
}

var envUints = []envUint{
	{"FAKIE_PASSWORD_MIN_LEN", 1, 1024, func(c *Config, v uint64) { c.Policy.MinLength = int(v) }},
	{"FAKIE_PASSWORD_MAX_LEN", 1, 4096, func(c *Config, v uint64) { c.Policy.MaxLength = int(v) }},
	{"FAKIE_ARGON2_MEMORY_KIB", 8 * 1024, 1024 * 1024, func(c *Config, v uint64) { c.Params.MemoryKiB = uint32(v) }},
	{"FAKIE_ARGON2_ITERATIONS", 1, 20, func(c *Config, v uint64) { c.Params.Iterations = uint32(v) }},
	{"FAKIE_ARGON2_PARALLELISM", 1, 64, func(c *Config, v uint64) { c.Params.Parallelism = uint8(v) }},
	{"FAKIE_ARGON2_SALT_LEN", 8, 64, func(c *Config, v uint64) { c.Params.SaltLength = uint32(v) }},
	{"FAKIE_ARGON2_KEY_LEN", 16, 64, func(c *Config, v uint64) { c.Params.KeyLength = uint32(v) }},
}

// FromEnv starts from DefaultConfig and applies FAKIE_PASSWORD_MIN_LEN,
// FAKIE_PASSWORD_MAX_LEN, FAKIE_PASSWORD_REJECT_VERY_WEAK and the
// FAKIE_ARGON2_{MEMORY_KIB,ITERATIONS,PARALLELISM,SALT_LEN,KEY_LEN} overrides.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	for _, e := range envUints {
		raw, ok := os.LookupEnv(e.key)
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
		if err != nil {
			return Config{}, fmt.Errorf("%s: not an unsigned integer", e.key)
		}
		if v < e.lo || v > e.hi {
			return Config{}, fmt.Errorf("%s: out of range [%d..%d]", e.key, e.lo, e.hi)
		}
		e.set(&cfg, v)
	}

	if raw, ok := os.LookupEnv("FAKIE_PASSWORD_REJECT_VERY_WEAK"); ok {
		b, err := parseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("FAKIE_PASSWORD_REJECT_VERY_WEAK: %w", err)
		}
		cfg.Policy.RejectVeryWeak = b
	}

	if cfg.Policy.MinLength > cfg.Policy.MaxLength {
		return Config{}, fmt.Errorf("password policy invalid: min_len(%d) > max_len(%d)",
			cfg.Policy.MinLength, cfg.Policy.MaxLength)
	}
	return cfg, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("invalid boolean")
	}
	return b, nil
}
