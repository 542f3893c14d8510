package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"os"
	"strings"
)

const (
	// SessionSecretEnvKey names the variable holding the session signing secret.
	// #nosec G101 -- variable name, not a credential.
	SessionSecretEnvKey = "FAKIE_SESSION_SECRET"

	// MinSecretBytes is the shortest HMAC-SHA256 secret accepted.
	MinSecretBytes = 32
)

// SigningKeyFromEnv reads envKey (trimmed) and applies CheckKey.
func SigningKeyFromEnv(envKey string, minBytes int) ([]byte, error) {
	return CheckKey([]byte(strings.TrimSpace(os.Getenv(envKey))), minBytes)
}

// CheckKey returns ErrKeyMissing for an empty key and ErrKeyTooShort when key
// has fewer than minBytes bytes.
func CheckKey(key []byte, minBytes int) ([]byte, error) {
	switch {
	case len(key) == 0:
		return nil, ErrKeyMissing
	case len(key) < minBytes:
		return nil, ErrKeyTooShort
	}
	return key, nil
}

// Fingerprint maps s (case and surrounding space ignored) to a hex digest that
// can correlate audit events without storing s. A non-empty key selects
// HMAC-SHA256; otherwise plain SHA-256 is used. Empty input yields "".
func Fingerprint(s string, key []byte) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	var h hash.Hash
	if len(key) > 0 {
		h = hmac.New(sha256.New, key)
	} else {
		h = sha256.New()
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}
