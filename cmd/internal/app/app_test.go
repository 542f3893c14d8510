package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fakie/cmd/internal/seed"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

const testSessionSecret = "0123456789abcdef0123456789abcdef"

// setTestEnv keeps hashing cheap and the failure delay short.
func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FAKIE_SESSION_SECRET", testSessionSecret)
	t.Setenv("FAKIE_SESSION_DENYLIST", "memory")
	t.Setenv("FAKIE_ARGON2_MEMORY_KIB", "8192")
	t.Setenv("FAKIE_ARGON2_ITERATIONS", "1")
	t.Setenv("FAKIE_ARGON2_PARALLELISM", "1")
	t.Setenv("FAKIE_AUTH_COOKIE_SECURE", "false")
	t.Setenv("FAKIE_AUTH_FAILURE_DELAY_MIN", "1ms")
	t.Setenv("FAKIE_AUTH_FAILURE_DELAY_MAX", "2ms")
}

func testConfig() Config {
	return Config{
		HTTPAddr:             "127.0.0.1:0",
		LogLevel:             "error",
		DBSchema:             "fakie",
		RateLimitStore:       BackendMemory,
		CORSAllowedOrigins:   []string{"http://localhost:5173"},
		CORSAllowCredentials: true,
		CORSMaxAgeSeconds:    600,
		MetricsEnabled:       true,
		SeedDemo:             true,
	}
}

func newTestServer(t *testing.T, cfg Config) (*App, *httptest.Server) {
	t.Helper()
	setTestEnv(t)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := New(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		a.Close()
	})
	return a, srv
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, base string) *client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &client{t: t, base: base, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(res.Body)
	if len(raw) > 0 && strings.HasPrefix(res.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(raw, &out); err != nil {
			c.t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return res.StatusCode, out
}

func (c *client) login(email, password string) {
	c.t.Helper()
	code, body := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password})
	if code != http.StatusOK {
		c.t.Fatalf("login %s: %d %v", email, code, body)
	}
}

func (c *client) register(username, email, password string) {
	c.t.Helper()
	code, body := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": username, "email": email, "password": password,
	})
	if code != http.StatusCreated {
		c.t.Fatalf("register %s: %d %v", email, code, body)
	}
}

func errorMessage(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	msg, _ := e["message"].(string)
	return msg
}

func TestRootRoute(t *testing.T) {
	_, srv := newTestServer(t, testConfig())
	c := newClient(t, srv.URL)

	code, body := c.do(http.MethodGet, "/", nil)
	if code != http.StatusOK || body["message"] != "Fakie Backend is running" {
		t.Fatalf("root: %d %v", code, body)
	}

	code, _ = c.do(http.MethodGet, "/nope", nil)
	if code != http.StatusNotFound {
		t.Fatalf("unknown path: %d", code)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	_, srv := newTestServer(t, testConfig())

	for _, path := range []string{"/healthz", "/readyz"} {
		res, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		_ = res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: %d", path, res.StatusCode)
		}
	}

	cfg := testConfig()
	cfg.ReadinessRequireDB = true
	_, strict := newTestServer(t, cfg)
	res, err := http.Get(strict.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz: %v", err)
	}
	_ = res.Body.Close()
	if res.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz without db: %d", res.StatusCode)
	}
}

func TestOwnershipScenario(t *testing.T) {
	_, srv := newTestServer(t, testConfig())

	alice := newClient(t, srv.URL)
	alice.register("alice", "alice@example.com", "skate4life")
	code, body := alice.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice2", "email": "Alice@Example.com", "password": "another-pass",
	})
	if code != http.StatusConflict || errorMessage(body) != "Email already registered" {
		t.Fatalf("duplicate register: %d %v", code, body)
	}

	ghost := newClient(t, srv.URL)
	for i := 0; i < 3; i++ {
		code, body := ghost.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ghost@example.com", "password": "whatever1"})
		if code != http.StatusUnauthorized || errorMessage(body) != "Invalid credentials" {
			t.Fatalf("ghost login %d: %d %v", i, code, body)
		}
	}
	u, _ := url.Parse(srv.URL)
	if cookies := ghost.http.Jar.Cookies(u); len(cookies) != 0 {
		t.Fatalf("ghost has cookies: %v", cookies)
	}

	alice.login("alice@example.com", "skate4life")

	bob := newClient(t, srv.URL)
	bob.register("bobby", "bob@example.com", "kickflip99")
	bob.login("bob@example.com", "kickflip99")

	admin := newClient(t, srv.URL)
	admin.login("admin@fakie.com", seed.DemoPassword)

	code, body = alice.do(http.MethodPost, "/api/spots", map[string]string{
		"name":        "Harbor Ledges",
		"location":    "Pier 7",
		"description": "Waxed granite ledges by the water",
		"difficulty":  "medium",
	})
	if code != http.StatusCreated || body["message"] != "Spot created successfully" {
		t.Fatalf("create: %d %v", code, body)
	}
	data, _ := body["data"].(map[string]any)
	id, _ := data["id"].(string)
	if id == "" {
		t.Fatalf("create: missing id in %v", body)
	}

	code, body = bob.do(http.MethodPut, "/api/spots/"+id, map[string]string{"name": "Bob's Ledges"})
	if code != http.StatusForbidden || errorMessage(body) != "Unauthorized" {
		t.Fatalf("bob update: %d %v", code, body)
	}

	code, body = alice.do(http.MethodPut, "/api/spots/"+id, map[string]string{"difficulty": "hard"})
	if code != http.StatusOK || body["message"] != "Spot updated successfully" {
		t.Fatalf("alice update: %d %v", code, body)
	}

	code, body = alice.do(http.MethodDelete, "/api/spots/"+id, nil)
	if code != http.StatusForbidden || errorMessage(body) != "Unauthorized: Admin only" {
		t.Fatalf("alice delete: %d %v", code, body)
	}

	code, body = admin.do(http.MethodDelete, "/api/spots/"+id, nil)
	if code != http.StatusOK || body["message"] != "Spot deleted successfully" {
		t.Fatalf("admin delete: %d %v", code, body)
	}

	anon := newClient(t, srv.URL)
	code, body = anon.do(http.MethodGet, "/api/spots/"+id, nil)
	if code != http.StatusNotFound || errorMessage(body) != "Spot not found" {
		t.Fatalf("get after delete: %d %v", code, body)
	}

	code, body = anon.do(http.MethodGet, "/api/spots", nil)
	list, _ := body["data"].([]any)
	if code != http.StatusOK || len(list) != 6 {
		t.Fatalf("list seeded spots: %d len=%d", code, len(list))
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	_, srv := newTestServer(t, testConfig())

	c := newClient(t, srv.URL)
	c.login("mike@example.com", seed.DemoPassword)

	code, body := c.do(http.MethodGet, "/api/auth/me", nil)
	user, _ := body["user"].(map[string]any)
	if code != http.StatusOK || user["username"] != "skater_mike" {
		t.Fatalf("me: %d %v", code, body)
	}

	if code, _ := c.do(http.MethodPost, "/api/auth/logout", nil); code != http.StatusOK {
		t.Fatalf("logout: %d", code)
	}
	if code, _ := c.do(http.MethodGet, "/api/auth/me", nil); code != http.StatusUnauthorized {
		t.Fatalf("me after logout: %d", code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	a, srv := newTestServer(t, testConfig())

	c := newClient(t, srv.URL)
	c.do(http.MethodGet, "/api/spots", nil)
	code, _ := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@example.com", "password": "wrongpass"})
	if code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", code)
	}

	if got := testutil.ToFloat64(a.metrics.LoginFailures); got != 1 {
		t.Fatalf("login failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(a.metrics.HTTPRequestsTotal.WithLabelValues("GET", "GET /api/spots", "200")); got != 1 {
		t.Fatalf("spots list requests = %v, want 1", got)
	}

	res, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer res.Body.Close()
	raw, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(raw), "fakie_auth_login_failures_total 1") {
		t.Fatalf("exposition missing login failures:\n%s", raw)
	}
}

func TestNewRejectsMissingSecret(t *testing.T) {
	setTestEnv(t)
	t.Setenv("FAKIE_SESSION_SECRET", "")

	_, err := New(context.Background(), testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil || !strings.Contains(err.Error(), "FAKIE_SESSION_SECRET") {
		t.Fatalf("expected secret error, got %v", err)
	}
}
