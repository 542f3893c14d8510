package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fakie/cmd/identity"

	"github.com/golang-jwt/jwt/v5"
)

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Secret = []byte(testSecret)
	m, err := NewManager(cfg, opts...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	tok, exp, err := m.Issue("01HZX0000000000000000000AA", identity.RoleAdmin, now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !exp.Equal(now.Add(30 * time.Minute)) {
		t.Fatalf("exp=%v", exp)
	}

	c, err := m.Verify(ctx, tok, now.Add(29*time.Minute))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if c.AccountID != "01HZX0000000000000000000AA" || c.Role != identity.RoleAdmin {
		t.Fatalf("claims mismatch: %+v", c)
	}
	if c.TokenID == "" {
		t.Fatalf("missing token id")
	}
	if !c.ExpiresAt.Equal(exp) || !c.IssuedAt.Equal(now) {
		t.Fatalf("times mismatch: iat=%v exp=%v", c.IssuedAt, c.ExpiresAt)
	}
}

func TestVerify_Expired(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	tok, exp, err := m.Issue("acct", identity.RoleMember, now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Verify(context.Background(), tok, exp); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken at expiry, got %v", err)
	}
	if _, err := m.Verify(context.Background(), tok, exp.Add(time.Hour)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestVerify_ClockSkewLeeway(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Secret = []byte(testSecret)
	cfg.ClockSkew = 10 * time.Second
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	tok, exp, _ := m.Issue("acct", identity.RoleMember, now)

	if _, err := m.Verify(context.Background(), tok, exp.Add(5*time.Second)); err != nil {
		t.Fatalf("expected token within leeway to verify, got %v", err)
	}
}

func TestVerify_RejectsTampering(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	now := time.Now()

	tok, _, err := m.Issue("acct", identity.RoleMember, now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(tok, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	cases := map[string]string{
		"empty":     "",
		"garbage":   "not.a.token",
		"tampered":  tampered,
		"truncated": parts[0] + "." + parts[1],
	}
	for name, raw := range cases {
		if _, err := m.Verify(ctx, raw, now); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestVerify_RejectsOtherKeysAlgorithmsAndIssuers(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	now := time.Now()

	claims := tokenClaims{
		Role: identity.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "fakie",
			Subject:   "acct",
			ID:        "jti",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}

	otherKey, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(strings.Repeat("x", 32)))
	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)

	wrongIss := claims
	wrongIss.Issuer = "someone-else"
	otherIssuer, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, wrongIss).SignedString([]byte(testSecret))

	noExp := claims
	noExp.ExpiresAt = nil
	withoutExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, noExp).SignedString([]byte(testSecret))

	for name, raw := range map[string]string{
		"other key":    otherKey,
		"hs512":        hs512,
		"alg none":     none,
		"other issuer": otherIssuer,
		"missing exp":  withoutExp,
	} {
		if _, err := m.Verify(ctx, raw, now); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestVerify_RejectsUnknownRole(t *testing.T) {
	m := newTestManager(t)
	now := time.Now()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "root",
		"sub":  "acct",
		"jti":  "x",
		"iss":  "fakie",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Minute).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(context.Background(), raw, now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssue_RejectsBadInput(t *testing.T) {
	m := newTestManager(t)
	if _, _, err := m.Issue("", identity.RoleMember, time.Now()); err == nil {
		t.Fatalf("expected error for empty account id")
	}
	if _, _, err := m.Issue("acct", identity.Role(0), time.Now()); err == nil {
		t.Fatalf("expected error for invalid role")
	}
}

func TestRevoke_WithoutDenylistIsNoop(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	now := time.Now()

	tok, _, _ := m.Issue("acct", identity.RoleMember, now)
	c, err := m.Verify(ctx, tok, now)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if m.Revocable() {
		t.Fatalf("manager without denylist must not be revocable")
	}
	if err := m.Revoke(ctx, c); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := m.Verify(ctx, tok, now); err != nil {
		t.Fatalf("token should stay valid without denylist: %v", err)
	}
}

func TestRevoke_WithDenylist(t *testing.T) {
	m := newTestManager(t, WithDenylist(NewMemoryDenylist(16, time.Hour)))
	ctx := context.Background()
	now := time.Now()

	tok, _, _ := m.Issue("acct", identity.RoleMember, now)
	other, _, _ := m.Issue("acct", identity.RoleMember, now)

	c, err := m.Verify(ctx, tok, now)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := m.Revoke(ctx, c); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := m.Verify(ctx, tok, now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("revoked token must be invalid, got %v", err)
	}
	if _, err := m.Verify(ctx, other, now); err != nil {
		t.Fatalf("other token must stay valid: %v", err)
	}
}

type brokenDenylist struct{}

func (brokenDenylist) Revoke(context.Context, string, time.Time) error { return errors.New("down") }
func (brokenDenylist) Revoked(context.Context, string) (bool, error)  { return false, errors.New("down") }

func TestVerify_DenylistErrorFailsClosed(t *testing.T) {
	m := newTestManager(t, WithDenylist(brokenDenylist{}))
	now := time.Now()
	tok, _, _ := m.Issue("acct", identity.RoleMember, now)
	if _, err := m.Verify(context.Background(), tok, now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
