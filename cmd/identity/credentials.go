package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"fakie/cmd/identity/ids"
	"fakie/cmd/security/password"
)

const (
	usernameMin = 3
	usernameMax = 50
	emailMax    = 254
)

// Credentials registers accounts and verifies login attempts.
type Credentials struct {
	store Store
	pw    password.Config
	now   func() time.Time

	// dummyHash is verified against when the email is unknown so that both
	// branches of Verify pay one Argon2id computation.
	dummyHash string
}

// CredentialsOption configures Credentials.
type CredentialsOption func(*Credentials)

// WithClock overrides the clock used for CreatedAt and ULID timestamps.
func WithClock(now func() time.Time) CredentialsOption {
	return func(c *Credentials) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCredentials builds a Credentials service over store using pw for hashing.
func NewCredentials(store Store, pw password.Config, opts ...CredentialsOption) (*Credentials, error) {
	if store == nil {
		return nil, errors.New("identity: nil store")
	}
	c := &Credentials{
		store: store,
		pw:    pw,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	// Policy is bypassed for the dummy: only the Argon2id params matter.
	dummyCfg := pw
	dummyCfg.Policy = password.Policy{MinLength: 1, MaxLength: 1024}
	h, err := dummyCfg.Hash("fakie-timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("identity: dummy hash: %w", err)
	}
	c.dummyHash = h
	return c, nil
}

// ValidateRegistration returns per-field problems with in. A nil map means valid.
func (c *Credentials) ValidateRegistration(in RegisterInput) map[string]string {
	fields := map[string]string{}

	name := strings.TrimSpace(in.Username)
	if n := utf8.RuneCountInString(name); n < usernameMin || n > usernameMax {
		fields["username"] = fmt.Sprintf("must be between %d and %d characters", usernameMin, usernameMax)
	}

	email := strings.TrimSpace(in.Email)
	if email == "" || len(email) > emailMax || !plainAddress(email) {
		fields["email"] = "must be a valid email address"
	}

	switch err := c.pw.Validate(in.Password); {
	case err == nil:
	case errors.Is(err, password.ErrPasswordTooShort), errors.Is(err, password.ErrPasswordTooLong):
		fields["password"] = fmt.Sprintf("must be between %d and %d characters", c.pw.Policy.MinLength, c.pw.Policy.MaxLength)
	default:
		fields["password"] = "is too weak"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// plainAddress accepts bare addresses only ("a@b.c"), not "Name <a@b.c>".
func plainAddress(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}

// Register creates a member account. Duplicate emails return a ConflictError.
func (c *Credentials) Register(ctx context.Context, in RegisterInput) (Account, error) {
	return c.create(ctx, "identity.Register", in, RoleMember)
}

func (c *Credentials) create(ctx context.Context, op string, in RegisterInput, role Role) (Account, error) {
	if fields := c.ValidateRegistration(in); fields != nil {
		return Account{}, invalid(op, firstField(fields))
	}
	if !role.Valid() {
		return Account{}, invalid(op, "invalid role")
	}

	hash, err := c.pw.Hash(in.Password)
	if err != nil {
		return Account{}, fmt.Errorf("%s: hash: %w", op, err)
	}

	now := c.now()
	id, err := ids.NewULID(now)
	if err != nil {
		return Account{}, fmt.Errorf("%s: id: %w", op, err)
	}

	email := strings.TrimSpace(in.Email)
	a := Account{
		ID:           id,
		Username:     strings.TrimSpace(in.Username),
		Email:        email,
		EmailNorm:    NormalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
	}
	if err := c.store.CreateAccount(ctx, a); err != nil {
		return Account{}, err
	}
	return a, nil
}

// firstField renders one field problem deterministically for error messages.
func firstField(fields map[string]string) string {
	for _, k := range []string{"username", "email", "password"} {
		if msg, ok := fields[k]; ok {
			return k + " " + msg
		}
	}
	return "invalid input"
}

// Verify checks email/password. It returns ok=false for unknown emails, wrong
// passwords and unreadable stored hashes alike; err is reserved for storage failures.
func (c *Credentials) Verify(ctx context.Context, email, pw string) (Account, bool, error) {
	a, err := c.store.AccountByEmail(ctx, NormalizeEmail(email))
	switch {
	case err == nil:
	case IsNotFound(err):
		_, _ = c.pw.Verify(c.dummyHash, pw)
		return Account{}, false, nil
	default:
		return Account{}, false, err
	}

	ok, err := c.pw.Verify(a.PasswordHash, pw)
	if err != nil || !ok {
		return Account{}, false, nil
	}
	return a, true, nil
}

// Get returns the account with id.
func (c *Credentials) Get(ctx context.Context, id string) (Account, error) {
	return c.store.AccountByID(ctx, id)
}

// EnsureAccount creates an account with role unless the email already exists.
// created reports whether a new row was written.
func (c *Credentials) EnsureAccount(ctx context.Context, in RegisterInput, role Role) (a Account, created bool, err error) {
	const op = "identity.EnsureAccount"

	existing, err := c.store.AccountByEmail(ctx, NormalizeEmail(in.Email))
	if err == nil {
		return existing, false, nil
	}
	if !IsNotFound(err) {
		return Account{}, false, err
	}

	a, err = c.create(ctx, op, in, role)
	if IsConflict(err) {
		existing, lookupErr := c.store.AccountByEmail(ctx, NormalizeEmail(in.Email))
		if lookupErr != nil {
			return Account{}, false, lookupErr
		}
		return existing, false, nil
	}
	if err != nil {
		return Account{}, false, err
	}
	return a, true, nil
}
