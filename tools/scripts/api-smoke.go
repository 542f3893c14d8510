// Package main provides a CI-friendly HTTP smoke test for the FAKIE API.
//
// It validates:
//   - register + login for two fresh accounts and the seeded admin
//   - owner-only spot updates and admin-only deletes
//   - gear review creation and public listing
//   - logout clears the session cookie
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const cookieName = "auth_token"

type smokeClient struct {
	name  string
	base  string
	http  *http.Client
	token string
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	var (
		baseURL   = flag.String("url", "http://127.0.0.1:3000", "API base URL")
		adminUser = flag.String("admin-email", "admin@fakie.com", "Seeded admin email")
		adminPass = flag.String("admin-password", "password123", "Seeded admin password")
		timeout   = flag.Duration("timeout", 7*time.Second, "Per-request timeout")
		verbose   = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if err := validateBaseURL(*baseURL); err != nil {
		fatalf("invalid -url: %v", err)
	}
	base := strings.TrimRight(*baseURL, "/")
	suffix := time.Now().UnixNano()

	alice := newClient("alice", base, *timeout)
	bob := newClient("bob", base, *timeout)
	admin := newClient("admin", base, *timeout)

	aliceEmail := fmt.Sprintf("alice-%d@example.com", suffix)
	bobEmail := fmt.Sprintf("bob-%d@example.com", suffix)
	alice.mustStatus(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice_smoke", "email": aliceEmail, "password": "skate4life",
	}, http.StatusCreated)
	bob.mustStatus(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "bob_smoke", "email": bobEmail, "password": "kickflip99",
	}, http.StatusCreated)

	alice.mustLogin(aliceEmail, "skate4life")
	bob.mustLogin(bobEmail, "kickflip99")
	admin.mustLogin(*adminUser, *adminPass)

	created := alice.mustStatus(http.MethodPost, "/api/spots", map[string]string{
		"name":        fmt.Sprintf("Smoke Ledge %d", suffix),
		"location":    "CI Plaza",
		"description": "Created by api-smoke",
		"difficulty":  "easy",
	}, http.StatusCreated)
	var spot struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(created.Data, &spot); err != nil || spot.ID == "" {
		fatalf("create spot: missing id in %s", created.Data)
	}
	if *verbose {
		fmt.Printf("created spot %s\n", spot.ID)
	}

	path := "/api/spots/" + spot.ID
	bob.mustError(http.MethodPut, path, map[string]string{"name": "Hijacked"}, http.StatusForbidden, "Unauthorized")
	alice.mustStatus(http.MethodPut, path, map[string]string{"difficulty": "hard"}, http.StatusOK)
	alice.mustError(http.MethodDelete, path, nil, http.StatusForbidden, "Unauthorized: Admin only")
	admin.mustStatus(http.MethodDelete, path, nil, http.StatusOK)
	bob.mustError(http.MethodGet, path, nil, http.StatusNotFound, "Spot not found")

	review := bob.mustStatus(http.MethodPost, "/api/gear", map[string]any{
		"name":     fmt.Sprintf("Smoke Deck %d", suffix),
		"category": "deck",
		"brand":    "CI",
		"rating":   4,
	}, http.StatusCreated)
	var gear struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(review.Data, &gear); err != nil || gear.ID == "" {
		fatalf("create gear: missing id in %s", review.Data)
	}
	list := newClient("anon", base, *timeout).mustStatus(http.MethodGet, "/api/gear", nil, http.StatusOK)
	if !bytes.Contains(list.Data, []byte(gear.ID)) {
		fatalf("gear list: %s missing from public listing", gear.ID)
	}

	bob.mustStatus(http.MethodPost, "/api/auth/logout", nil, http.StatusOK)
	if bob.token != "" {
		fatalf("logout: session cookie not cleared")
	}
	bob.mustError(http.MethodGet, "/api/auth/me", nil, http.StatusUnauthorized, "Unauthorized: No token provided")

	fmt.Printf("OK: spot=%s gear=%s\n", spot.ID, gear.ID)
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("missing host")
	}
	return nil
}

func newClient(name, base string, timeout time.Duration) *smokeClient {
	return &smokeClient{name: name, base: base, http: &http.Client{Timeout: timeout}}
}

func (c *smokeClient) mustLogin(email, password string) {
	c.mustStatus(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, http.StatusOK)
	if c.token == "" {
		fatalf("%s login: no %s cookie", c.name, cookieName)
	}
}

// do sends one request. The session cookie is carried by hand because the
// server marks it Secure, which a cookie jar would withhold over plain http.
func (c *smokeClient) do(method, path string, body any) (int, envelope) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			fatalf("%s %s %s: marshal: %v", c.name, method, path, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		fatalf("%s %s %s: %v", c.name, method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: c.token})
	}

	res, err := c.http.Do(req)
	if err != nil {
		fatalf("%s %s %s: %v", c.name, method, path, err)
	}
	defer func() { _ = res.Body.Close() }()

	for _, ck := range res.Cookies() {
		if ck.Name == cookieName {
			c.token = ck.Value
			if ck.MaxAge < 0 {
				c.token = ""
			}
		}
	}

	var env envelope
	raw, _ := io.ReadAll(res.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			fatalf("%s %s %s: decode %q: %v", c.name, method, path, raw, err)
		}
	}
	return res.StatusCode, env
}

func (c *smokeClient) mustStatus(method, path string, body any, want int) envelope {
	code, env := c.do(method, path, body)
	if code != want {
		msg := ""
		if env.Error != nil {
			msg = env.Error.Message
		}
		fatalf("%s %s %s: status=%d want=%d (%s)", c.name, method, path, code, want, msg)
	}
	return env
}

func (c *smokeClient) mustError(method, path string, body any, want int, message string) {
	env := c.mustStatus(method, path, body, want)
	if env.Error == nil || env.Error.Message != message {
		fatalf("%s %s %s: error message mismatch, want %q", c.name, method, path, message)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
