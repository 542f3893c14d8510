package identity

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRegister_CreatesMember(t *testing.T) {
	c, _ := newTestCredentials(t)
	ctx := context.Background()

	a, err := c.Register(ctx, RegisterInput{Username: "skater_mike", Email: "  Mike@Example.com ", Password: "password123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if a.Role != RoleMember {
		t.Fatalf("role=%v want member", a.Role)
	}
	if a.Email != "Mike@Example.com" || a.EmailNorm != "mike@example.com" {
		t.Fatalf("email=%q norm=%q", a.Email, a.EmailNorm)
	}
	if a.PasswordHash == "" || strings.Contains(a.PasswordHash, "password123") {
		t.Fatalf("password hash not set correctly")
	}
	if len(a.ID) != 26 {
		t.Fatalf("id=%q want ULID", a.ID)
	}
}

func TestRegister_DuplicateEmailIsCaseInsensitive(t *testing.T) {
	c, _ := newTestCredentials(t)
	ctx := context.Background()

	if _, err := c.Register(ctx, RegisterInput{Username: "tony", Email: "tony@example.com", Password: "password123"}); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := c.Register(ctx, RegisterInput{Username: "tony2", Email: "TONY@example.com", Password: "password123"})
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var ce ConflictError
	if !errors.As(err, &ce) || ce.Field != "email" {
		t.Fatalf("conflict field=%q", ce.Field)
	}
}

func TestRegister_ConcurrentSameEmailOneWins(t *testing.T) {
	c, _ := newTestCredentials(t)
	ctx := context.Background()

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Register(ctx, RegisterInput{Username: "racer", Email: "race@example.com", Password: "password123"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case IsConflict(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 || conflicts != n-1 {
		t.Fatalf("ok=%d conflicts=%d", ok, conflicts)
	}
}

func TestRegister_InvalidInput(t *testing.T) {
	c, _ := newTestCredentials(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"short username", RegisterInput{Username: "ab", Email: "a@example.com", Password: "password123"}, "username"},
		{"bad email", RegisterInput{Username: "abc", Email: "not-an-email", Password: "password123"}, "email"},
		{"display email", RegisterInput{Username: "abc", Email: "Bob <bob@example.com>", Password: "password123"}, "email"},
		{"short password", RegisterInput{Username: "abc", Email: "a@example.com", Password: "short"}, "password"},
		{"long password", RegisterInput{Username: "abc", Email: "a@example.com", Password: strings.Repeat("x", 101)}, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := c.ValidateRegistration(tc.in)
			if _, ok := fields[tc.field]; !ok {
				t.Fatalf("fields=%v, want %q", fields, tc.field)
			}
			if _, err := c.Register(ctx, tc.in); !IsInvalidInput(err) {
				t.Fatalf("Register err=%v, want invalid input", err)
			}
		})
	}

	if fields := c.ValidateRegistration(RegisterInput{Username: "abc", Email: "a@example.com", Password: "password123"}); fields != nil {
		t.Fatalf("valid input produced fields %v", fields)
	}
}

func TestVerify(t *testing.T) {
	c, _ := newTestCredentials(t)
	ctx := context.Background()

	reg, err := c.Register(ctx, RegisterInput{Username: "admin", Email: "admin@fakie.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	a, ok, err := c.Verify(ctx, "ADMIN@fakie.com", "password123")
	if err != nil || !ok {
		t.Fatalf("Verify correct: ok=%v err=%v", ok, err)
	}
	if a.ID != reg.ID {
		t.Fatalf("Verify returned %q want %q", a.ID, reg.ID)
	}

	if _, ok, err := c.Verify(ctx, "admin@fakie.com", "wrong-password"); ok || err != nil {
		t.Fatalf("Verify wrong password: ok=%v err=%v", ok, err)
	}
	if _, ok, err := c.Verify(ctx, "nobody@fakie.com", "password123"); ok || err != nil {
		t.Fatalf("Verify unknown email: ok=%v err=%v", ok, err)
	}
}

func TestVerify_UnknownEmailCostsLikeWrongPassword(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	// Heavy enough that Argon2id dominates both paths.
	pw := fastPasswordConfig()
	pw.Params.MemoryKiB = 8 * 1024
	pw.Params.Iterations = 2
	c, err := NewCredentials(NewMemoryStore(), pw)
	if err != nil {
		t.Fatalf("NewCredentials: %v", err)
	}
	ctx := context.Background()
	if _, err := c.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	const samples = 15
	timeVerify := func(email string) time.Duration {
		start := time.Now()
		if _, ok, err := c.Verify(ctx, email, "wrong-password"); ok || err != nil {
			t.Fatalf("Verify(%s): ok=%v err=%v", email, ok, err)
		}
		return time.Since(start)
	}

	var wrong, unknown []time.Duration
	for range samples {
		wrong = append(wrong, timeVerify("alice@example.com"))
		unknown = append(unknown, timeVerify("ghost@example.com"))
	}

	mw, mu := median(wrong), median(unknown)
	ratio := float64(mu) / float64(mw)
	if ratio < 0.5 || ratio > 2 {
		t.Fatalf("median latency differs: wrong password %v, unknown email %v (ratio %.2f)", mw, mu, ratio)
	}
}

func median(ds []time.Duration) time.Duration {
	s := slices.Clone(ds)
	slices.Sort(s)
	return s[len(s)/2]
}

func TestVerify_CorruptStoredHashIsMismatch(t *testing.T) {
	c, st := newTestCredentials(t)
	ctx := context.Background()

	a := Account{ID: "01HZX0000000000000000000AA", Username: "broken", Email: "b@example.com", EmailNorm: "b@example.com", PasswordHash: "not-a-hash", Role: RoleMember}
	if err := st.CreateAccount(ctx, a); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if _, ok, err := c.Verify(ctx, "b@example.com", "password123"); ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

type failingStore struct{ MemoryStore }

func (failingStore) AccountByEmail(context.Context, string) (Account, error) {
	return Account{}, errors.New("db down")
}

func TestVerify_StoreErrorPropagates(t *testing.T) {
	c, err := NewCredentials(&failingStore{}, fastPasswordConfig())
	if err != nil {
		t.Fatalf("NewCredentials: %v", err)
	}
	if _, ok, err := c.Verify(context.Background(), "a@example.com", "password123"); ok || err == nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestEnsureAccount_Idempotent(t *testing.T) {
	c, _ := newTestCredentials(t)
	ctx := context.Background()
	in := RegisterInput{Username: "admin", Email: "admin@fakie.com", Password: "password123"}

	first, created, err := c.EnsureAccount(ctx, in, RoleAdmin)
	if err != nil || !created {
		t.Fatalf("first EnsureAccount: created=%v err=%v", created, err)
	}
	if first.Role != RoleAdmin {
		t.Fatalf("role=%v want admin", first.Role)
	}

	second, created, err := c.EnsureAccount(ctx, in, RoleAdmin)
	if err != nil || created {
		t.Fatalf("second EnsureAccount: created=%v err=%v", created, err)
	}
	if second.ID != first.ID {
		t.Fatalf("second id=%q want %q", second.ID, first.ID)
	}

	got, err := c.Get(ctx, first.ID)
	if err != nil || got.Email != "admin@fakie.com" {
		t.Fatalf("Get: %+v %v", got, err)
	}
	if _, err := c.Get(ctx, "01HZX0000000000000000000ZZ"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
