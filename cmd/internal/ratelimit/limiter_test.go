package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fakie/cmd/internal/httpx"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

func doReq(h http.Handler, remote string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	r.RemoteAddr = remote
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	return rr
}

func TestLimiter_RejectsAfterMaxUntilWindowEnds(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	var rejected int
	l := New(NewMemoryStore(),
		WithClock(clk.now),
		WithLogger(quietLogger()),
		WithRejectHook(func(_ *http.Request, route, ip string, _ Counter) {
			if route != "login" || ip != "10.0.0.1" {
				t.Errorf("hook got route=%q ip=%q", route, ip)
			}
			rejected++
		}),
	)
	rule := Rule{Window: time.Minute, Max: 3, Message: "Too many login attempts. Try again later."}
	h := l.Middleware("login", rule)(okHandler())

	for i := 0; i < 3; i++ {
		if rr := doReq(h, "10.0.0.1:1000"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: status=%d", i+1, rr.Code)
		}
	}

	clk.t = clk.t.Add(20 * time.Second)
	rr := doReq(h, "10.0.0.1:1000")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("4th request: status=%d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "40" {
		t.Fatalf("Retry-After=%q want 40", got)
	}
	var resp httpx.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != httpx.CodeRateLimited || resp.Error.Message != rule.Message {
		t.Fatalf("body=%+v", resp)
	}
	if rejected != 1 {
		t.Fatalf("reject hook calls=%d", rejected)
	}

	// Another client is unaffected.
	if rr := doReq(h, "10.0.0.2:1000"); rr.Code != http.StatusOK {
		t.Fatalf("other client status=%d", rr.Code)
	}

	clk.t = clk.t.Add(41 * time.Second)
	if rr := doReq(h, "10.0.0.1:1000"); rr.Code != http.StatusOK {
		t.Fatalf("after window status=%d", rr.Code)
	}
}

func TestLimiter_RoutesHaveSeparateBudgets(t *testing.T) {
	store := NewMemoryStore()
	l := New(store, WithLogger(quietLogger()))
	rule := Rule{Window: time.Minute, Max: 1}

	login := l.Middleware("login", rule)(okHandler())
	register := l.Middleware("register", rule)(okHandler())

	if rr := doReq(login, "10.0.0.1:1"); rr.Code != http.StatusOK {
		t.Fatalf("login status=%d", rr.Code)
	}
	if rr := doReq(register, "10.0.0.1:1"); rr.Code != http.StatusOK {
		t.Fatalf("register status=%d", rr.Code)
	}
	if rr := doReq(login, "10.0.0.1:1"); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second login status=%d", rr.Code)
	}
}

type brokenStore struct{}

func (brokenStore) Increment(context.Context, string, time.Duration, time.Time) (Counter, error) {
	return Counter{}, errors.New("redis down")
}

func TestLimiter_FailsOpen(t *testing.T) {
	l := New(brokenStore{}, WithLogger(quietLogger()))
	h := l.Middleware("login", Rule{Window: time.Minute, Max: 1})(okHandler())

	for i := 0; i < 5; i++ {
		if rr := doReq(h, "10.0.0.1:1"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: status=%d", i+1, rr.Code)
		}
	}
}

func TestLimiter_DisabledRulePassesThrough(t *testing.T) {
	l := New(brokenStore{}, WithLogger(quietLogger()))
	h := l.Middleware("login", Rule{Window: time.Minute, Max: 0})(okHandler())
	if rr := doReq(h, "10.0.0.1:1"); rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestRuleFromEnv(t *testing.T) {
	t.Setenv("FAKIE_RATELIMIT_LOGIN_WINDOW", "2m")
	t.Setenv("FAKIE_RATELIMIT_LOGIN_MAX", "bogus")

	r := RuleFromEnv("login", DefaultLoginRule())
	if r.Window != 2*time.Minute {
		t.Fatalf("window=%v", r.Window)
	}
	if r.Max != 10 {
		t.Fatalf("invalid max should keep default, got %d", r.Max)
	}
	if r.Message != DefaultLoginRule().Message {
		t.Fatalf("message=%q", r.Message)
	}

	reg := DefaultRegisterRule()
	if reg.Window != 15*time.Minute || reg.Max != 20 {
		t.Fatalf("register defaults=%+v", reg)
	}
}
