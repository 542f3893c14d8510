package access

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fakie/cmd/identity"
	"fakie/cmd/internal/auth/session"
	"fakie/cmd/internal/httpx"
)

// CookieName is the session cookie set at login.
const CookieName = "auth_token"

// Verifier checks a raw session token.
type Verifier interface {
	Verify(ctx context.Context, raw string, now time.Time) (session.Claims, error)
}

// Gate turns a session cookie into an Identity or rejects the request.
type Gate struct {
	verifier Verifier
	log      *slog.Logger
	now      func() time.Time
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLogger sets the gate logger (debug-level rejection logs).
func WithLogger(log *slog.Logger) GateOption {
	return func(g *Gate) {
		if log != nil {
			g.log = log
		}
	}
}

// WithNow overrides the gate clock.
func WithNow(now func() time.Time) GateOption {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGate returns a Gate backed by verifier.
func NewGate(verifier Verifier, opts ...GateOption) *Gate {
	g := &Gate{
		verifier: verifier,
		log:      slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Require admits only requests carrying a valid session cookie.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromCookie(r)
		if raw == "" {
			httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized: No token provided")
			return
		}

		claims, err := g.verifier.Verify(r.Context(), raw, g.now())
		if err != nil {
			g.log.Debug("auth.gate.reject", "route", r.Pattern, "err", err)
			httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized: Invalid token")
			return
		}

		ctx := WithIdentity(r.Context(), Identity{AccountID: claims.AccountID, Role: claims.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireFunc is Require for handler funcs.
func (g *Gate) RequireFunc(next http.HandlerFunc) http.Handler {
	return g.Require(next)
}

// AdminOnly must be composed inside Require. Non-admins get 403.
func (g *Gate) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized: No token provided")
			return
		}
		if !id.Role.AtLeast(identity.RoleAdmin) {
			httpx.WriteError(w, http.StatusForbidden, httpx.CodeForbidden, "Forbidden: Admins only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TokenFromRequest returns the raw session cookie value, or "".
func TokenFromRequest(r *http.Request) string { return tokenFromCookie(r) }

func tokenFromCookie(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}
