package ratelimit

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule bounds requests per client per route: at most Max within Window.
type Rule struct {
	Window  time.Duration
	Max     int64
	Message string
}

// Enabled reports whether the rule limits anything.
func (r Rule) Enabled() bool { return r.Window > 0 && r.Max > 0 }

// Counter is the state of one key's current window.
type Counter struct {
	Count   int64
	ResetAt time.Time
}

// CounterStore increments the counter for key, starting a fresh window of the
// given length when none exists or the previous one has elapsed at now.
type CounterStore interface {
	Increment(ctx context.Context, key string, window time.Duration, now time.Time) (Counter, error)
}

// DefaultRegisterRule is applied to account registration.
func DefaultRegisterRule() Rule {
	return Rule{
		Window:  15 * time.Minute,
		Max:     20,
		Message: "Too many login/register attempts, please try again later.",
	}
}

// DefaultLoginRule is applied to login.
func DefaultLoginRule() Rule {
	return Rule{
		Window:  time.Minute,
		Max:     10,
		Message: "Too many login attempts. Try again later.",
	}
}

// RuleFromEnv overrides def with FAKIE_RATELIMIT_<NAME>_WINDOW and
// FAKIE_RATELIMIT_<NAME>_MAX. Invalid values keep the default. MAX=0 disables the rule.
func RuleFromEnv(name string, def Rule) Rule {
	prefix := "FAKIE_RATELIMIT_" + strings.ToUpper(strings.TrimSpace(name)) + "_"
	r := def

	if v := strings.TrimSpace(os.Getenv(prefix + "WINDOW")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			r.Window = d
		}
	}
	if v := strings.TrimSpace(os.Getenv(prefix + "MAX")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			r.Max = n
		}
	}
	return r
}
