package identity

import (
	"testing"

	"fakie/cmd/security/password"
)

// fastPasswordConfig keeps Argon2id cheap so tests stay quick.
func fastPasswordConfig() password.Config {
	return password.Config{
		Params: password.Argon2idParams{
			MemoryKiB:   64,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: password.Policy{MinLength: 8, MaxLength: 100},
	}
}

func newTestCredentials(t *testing.T) (*Credentials, *MemoryStore) {
	t.Helper()
	st := NewMemoryStore()
	c, err := NewCredentials(st, fastPasswordConfig())
	if err != nil {
		t.Fatalf("NewCredentials: %v", err)
	}
	return c, st
}
