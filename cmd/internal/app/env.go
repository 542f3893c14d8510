package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// envOr returns parse(value) for a set, non-blank key, and def when the key is
// unset, blank, or rejected by parse.
func envOr[T any](key string, def T, parse func(string) (T, bool)) T {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if out, ok := parse(v); ok {
		return out
	}
	return def
}

// EnvString reads a trimmed string.
func EnvString(key, def string) string {
	return envOr(key, def, func(v string) (string, bool) { return v, true })
}

// EnvBool accepts anything strconv.ParseBool does.
func EnvBool(key string, def bool) bool {
	return envOr(key, def, func(v string) (bool, bool) {
		b, err := strconv.ParseBool(v)
		return b, err == nil
	})
}

// EnvInt reads a positive int.
func EnvInt(key string, def int) int {
	return envOr(key, def, func(v string) (int, bool) {
		n, err := strconv.Atoi(v)
		return n, err == nil && n > 0
	})
}

// EnvInt32 reads a non-negative int32 (pool sizes).
func EnvInt32(key string, def int32) int32 {
	return envOr(key, def, func(v string) (int32, bool) {
		n, err := strconv.ParseInt(v, 10, 32)
		return int32(n), err == nil && n >= 0
	})
}

// EnvDuration reads a positive Go duration ("15s", "2m").
func EnvDuration(key string, def time.Duration) time.Duration {
	return envOr(key, def, func(v string) (time.Duration, bool) {
		d, err := time.ParseDuration(v)
		return d, err == nil && d > 0
	})
}

// EnvList reads a comma-separated list, dropping blank entries.
func EnvList(key string, def []string) []string {
	return envOr(key, def, func(v string) ([]string, bool) {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out, len(out) > 0
	})
}
