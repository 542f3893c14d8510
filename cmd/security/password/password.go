package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const phcVersion = "v=19" // argon2.Version (0x13)

var b64 = base64.RawStdEncoding

// phcHash is a decoded "$argon2id$v=19$m=<KiB>,t=<iter>,p=<par>$<salt>$<key>" string.
type phcHash struct {
	params Argon2idParams
	salt   []byte
	key    []byte
}

func (h phcHash) String() string {
	return fmt.Sprintf("$argon2id$%s$m=%d,t=%d,p=%d$%s$%s",
		phcVersion,
		h.params.MemoryKiB, h.params.Iterations, h.params.Parallelism,
		b64.EncodeToString(h.salt), b64.EncodeToString(h.key),
	)
}

// Hash validates password against the policy and returns its encoded Argon2id hash.
func (c Config) Hash(password string) (string, error) {
	if err := c.Validate(password); err != nil {
		return "", err
	}

	h := phcHash{params: c.Params, salt: make([]byte, c.Params.SaltLength)}
	if _, err := rand.Read(h.salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}
	h.key = derive(password, h.salt, c.Params, c.Params.KeyLength)
	return h.String(), nil
}

// Verify reports whether password matches encoded. A malformed hash, or one whose
// cost is far above the configured parameters, returns ErrInvalidHash.
// The length policy is not applied here.
func (c Config) Verify(encoded, password string) (bool, error) {
	h, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}
	if !c.Params.accepts(h.params) {
		return false, ErrInvalidHash
	}

	got := derive(password, h.salt, h.params, h.params.KeyLength)
	return subtle.ConstantTimeCompare(got, h.key) == 1, nil
}

func derive(password string, salt []byte, p Argon2idParams, keyLen uint32) []byte {
	return argon2.IDKey([]byte(password), salt, p.Iterations, p.MemoryKiB, p.Parallelism, keyLen)
}

// accepts bounds the cost of stored hashes: older, cheaper settings verify,
// anything more than twice the configured cost does not.
func (p Argon2idParams) accepts(got Argon2idParams) bool {
	switch {
	case got.MemoryKiB > p.MemoryKiB*2,
		got.Iterations > p.Iterations*2,
		uint32(got.Parallelism) > uint32(p.Parallelism)*2:
		return false
	case got.SaltLength < 8 || got.SaltLength > 64:
		return false
	case got.KeyLength < 16 || got.KeyLength > 128:
		return false
	}
	return true
}

func parsePHC(s string) (phcHash, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" || parts[2] != phcVersion {
		return phcHash{}, ErrInvalidHash
	}

	var h phcHash
	seen := map[string]bool{}
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || seen[k] {
			return phcHash{}, ErrInvalidHash
		}
		seen[k] = true

		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 {
			return phcHash{}, ErrInvalidHash
		}
		switch k {
		case "m":
			h.params.MemoryKiB = uint32(n)
		case "t":
			h.params.Iterations = uint32(n)
		case "p":
			if n > 255 {
				return phcHash{}, ErrInvalidHash
			}
			h.params.Parallelism = uint8(n)
		default:
			return phcHash{}, ErrInvalidHash
		}
	}
	if len(seen) != 3 {
		return phcHash{}, ErrInvalidHash
	}

	var err error
	if h.salt, err = b64.DecodeString(parts[4]); err != nil {
		return phcHash{}, ErrInvalidHash
	}
	if h.key, err = b64.DecodeString(parts[5]); err != nil {
		return phcHash{}, ErrInvalidHash
	}
	h.params.SaltLength = uint32(len(h.salt)) // #nosec G115 -- bounded by accepts() before use.
	h.params.KeyLength = uint32(len(h.key))   // #nosec G115 -- bounded by accepts() before use.
	return h, nil
}
