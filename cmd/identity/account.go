package identity

import (
	"strings"
	"time"
)

// Account is a FAKIE member. PasswordHash is never serialized.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	EmailNorm    string    `json:"-"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterInput describes a registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// NormalizeEmail is the key email uniqueness is enforced on: trimmed and lower-cased.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
