package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fakie/cmd/identity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the verified content of a session token.
type Claims struct {
	AccountID string
	Role      identity.Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// tokenClaims is the wire form of a session token.
type tokenClaims struct {
	Role identity.Role `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and verifies session tokens.
type Manager struct {
	cfg  Config
	deny Denylist
}

// Option configures a Manager.
type Option func(*Manager)

// WithDenylist enables server-side revocation checks.
func WithDenylist(d Denylist) Option {
	return func(m *Manager) { m.deny = d }
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// TTL is the configured token lifetime.
func (m *Manager) TTL() time.Duration { return m.cfg.TTL }

// Issue signs a token for accountID valid from now until now+TTL.
// The returned expiry is truncated to whole seconds, as encoded in the token.
func (m *Manager) Issue(accountID string, role identity.Role, now time.Time) (string, time.Time, error) {
	if strings.TrimSpace(accountID) == "" {
		return "", time.Time{}, fmt.Errorf("session: empty account id")
	}
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("session: invalid role %d", role)
	}

	iat := jwt.NewNumericDate(now)
	exp := jwt.NewNumericDate(now.Add(m.cfg.TTL))

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   accountID,
			IssuedAt:  iat,
			ExpiresAt: exp,
			ID:        uuid.NewString(),
		},
	})

	signed, err := tok.SignedString(m.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("session: sign: %w", err)
	}
	return signed, exp.Time, nil
}

// Verify checks signature, algorithm, issuer, expiry and role of raw as of now,
// and consults the denylist when one is configured. All failures are ErrInvalidToken.
func (m *Manager) Verify(ctx context.Context, raw string, now time.Time) (Claims, error) {
	if raw == "" {
		return Claims{}, ErrInvalidToken
	}

	// Build a fresh parser per call so the clock is the caller's.
	p := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(m.cfg.ClockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	var tc tokenClaims
	parsed, err := p.ParseWithClaims(raw, &tc, func(*jwt.Token) (any, error) {
		return m.cfg.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if tc.Subject == "" || tc.ID == "" || !tc.Role.Valid() || tc.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}

	c := Claims{
		AccountID: tc.Subject,
		Role:      tc.Role,
		TokenID:   tc.ID,
		ExpiresAt: tc.ExpiresAt.Time,
	}
	if tc.IssuedAt != nil {
		c.IssuedAt = tc.IssuedAt.Time
	}

	if m.deny != nil {
		revoked, err := m.deny.Revoked(ctx, c.TokenID)
		if err != nil {
			return Claims{}, fmt.Errorf("%w: denylist: %v", ErrInvalidToken, err)
		}
		if revoked {
			return Claims{}, ErrInvalidToken
		}
	}
	return c, nil
}

// Revocable reports whether Revoke has any effect.
func (m *Manager) Revocable() bool { return m.deny != nil }

// Revoke denylists c's token id until its expiry. Without a denylist it is a no-op.
func (m *Manager) Revoke(ctx context.Context, c Claims) error {
	if m.deny == nil || c.TokenID == "" {
		return nil
	}
	return m.deny.Revoke(ctx, c.TokenID, c.ExpiresAt)
}
