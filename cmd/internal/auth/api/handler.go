// Package authapi serves FAKIE's account endpoints: register, login, logout and me.
package authapi

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"fakie/cmd/identity"
	"fakie/cmd/internal/audit"
	"fakie/cmd/internal/auth/access"
	"fakie/cmd/internal/auth/session"
	"fakie/cmd/internal/httpx"
	"fakie/cmd/internal/ratelimit"
	"fakie/cmd/security/token"
)

// Accounts is the credential store the handler depends on.
type Accounts interface {
	ValidateRegistration(in identity.RegisterInput) map[string]string
	Register(ctx context.Context, in identity.RegisterInput) (identity.Account, error)
	Verify(ctx context.Context, email, password string) (identity.Account, bool, error)
	Get(ctx context.Context, id string) (identity.Account, error)
}

// Tokens issues, verifies and revokes session tokens.
type Tokens interface {
	Issue(accountID string, role identity.Role, now time.Time) (string, time.Time, error)
	Verify(ctx context.Context, raw string, now time.Time) (session.Claims, error)
	Revoke(ctx context.Context, c session.Claims) error
	Revocable() bool
	TTL() time.Duration
}

// Handler wires HTTP auth endpoints to the credential and session services.
type Handler struct {
	log *slog.Logger
	cfg Config

	accounts Accounts
	tokens   Tokens
	gate     *access.Gate
	limiter  *ratelimit.Limiter
	audit    audit.Sink

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// HandlerOption configures optional auth handler dependencies.
type HandlerOption func(*Handler)

// WithAuditSink overrides the default log-only audit sink.
func WithAuditSink(sink audit.Sink) HandlerOption {
	return func(h *Handler) {
		if sink != nil {
			h.audit = sink
		}
	}
}

// WithLimiter sets the limiter guarding register and login.
func WithLimiter(l *ratelimit.Limiter) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.limiter = l
		}
	}
}

// WithGate shares an existing request gate.
func WithGate(g *access.Gate) HandlerOption {
	return func(h *Handler) {
		if g != nil {
			h.gate = g
		}
	}
}

// WithClock overrides the handler clock.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithSleep overrides how the login failure delay is waited out.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) HandlerOption {
	return func(h *Handler) {
		if sleep != nil {
			h.sleep = sleep
		}
	}
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, accounts Accounts, tokens Tokens, opts ...HandlerOption) (*Handler, error) {
	if accounts == nil {
		return nil, errors.New("auth: nil accounts")
	}
	if tokens == nil {
		return nil, errors.New("auth: nil tokens")
	}
	if log == nil {
		log = slog.Default()
	}

	h := &Handler{
		log:      log,
		cfg:      cfg,
		accounts: accounts,
		tokens:   tokens,
		audit:    audit.LogSink{Log: log},
		now:      func() time.Time { return time.Now().UTC() },
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}

	if h.gate == nil {
		h.gate = access.NewGate(tokens, access.WithLogger(log), access.WithNow(h.now))
	}
	if h.limiter == nil {
		h.limiter = ratelimit.New(ratelimit.NewMemoryStore(),
			ratelimit.WithLogger(log),
			ratelimit.WithTrustProxy(cfg.TrustProxy),
		)
	}
	return h, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.Handle("POST /api/auth/register",
		h.limiter.Middleware("register", h.cfg.RegisterRule)(http.HandlerFunc(h.handleRegister)))
	mux.Handle("POST /api/auth/login",
		h.limiter.Middleware("login", h.cfg.LoginRule)(http.HandlerFunc(h.handleLogin)))
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.Handle("GET /api/auth/me", h.gate.Require(http.HandlerFunc(h.handleMe)))
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidJSON, "Invalid request body")
		return
	}

	in := identity.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if fields := h.accounts.ValidateRegistration(in); fields != nil {
		httpx.WriteValidation(w, fields)
		return
	}

	ctx := r.Context()
	a, err := h.accounts.Register(ctx, in)
	if err != nil {
		switch {
		case identity.IsConflict(err):
			httpx.WriteError(w, http.StatusConflict, httpx.CodeConflict, "Email already registered")
		case identity.IsInvalidInput(err):
			httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidationFailed, "Validation failed")
		default:
			h.log.Error("auth.register.fail", "err", err)
			httpx.WriteInternal(w)
		}
		return
	}

	h.record(r, audit.ActionRegister, a.ID, nil)
	httpx.WriteJSON(w, http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		h.loginFailed(w, r, "", "invalid_body")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		h.loginFailed(w, r, email, "missing_fields")
		return
	}

	ctx := r.Context()
	a, ok, err := h.accounts.Verify(ctx, email, req.Password)
	if err != nil {
		h.log.Error("auth.login.lookup.fail", "err", err)
		httpx.WriteInternal(w)
		return
	}
	if !ok {
		h.loginFailed(w, r, email, "invalid_credentials")
		return
	}

	now := h.now()
	tok, exp, err := h.tokens.Issue(a.ID, a.Role, now)
	if err != nil {
		h.log.Error("auth.login.issue.fail", "err", err)
		httpx.WriteInternal(w)
		return
	}

	h.setSessionCookie(w, tok, exp)
	h.record(r, audit.ActionLoginSuccess, a.ID, nil)

	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Message:   "Login successful",
		User:      toUserResponse(a),
		ExpiresAt: exp,
	})
}

// loginFailed is the single exit for every failed login: same delay, same
// response, cookie cleared.
func (h *Handler) loginFailed(w http.ResponseWriter, r *http.Request, email, reason string) {
	ctx := r.Context()
	h.sleep(ctx, jitter(h.cfg.FailureDelayMin, h.cfg.FailureDelayMax))

	meta := map[string]any{"reason": reason}
	if fp := token.Fingerprint(email, h.cfg.AuditKey); fp != "" {
		meta["identifier"] = fp
	}
	h.record(r, audit.ActionLoginFailed, "", meta)

	h.expireSessionCookie(w)
	httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeInvalidCreds, "Invalid credentials")
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		accountID string
		revoked   bool
	)
	if raw := access.TokenFromRequest(r); raw != "" {
		if claims, err := h.tokens.Verify(ctx, raw, h.now()); err == nil {
			accountID = claims.AccountID
			if err := h.tokens.Revoke(ctx, claims); err != nil {
				h.log.Error("auth.logout.revoke.fail", "err", err)
			} else {
				revoked = h.tokens.Revocable()
			}
		}
	}

	h.expireSessionCookie(w)
	if accountID != "" {
		// Without a denylist the token stays valid until exp; only the cookie is gone.
		h.record(r, audit.ActionLogout, accountID, map[string]any{"revoked": revoked})
	}
	httpx.WriteJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := access.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized: No token provided")
		return
	}

	a, err := h.accounts.Get(r.Context(), id.AccountID)
	if err != nil {
		if identity.IsNotFound(err) {
			httpx.WriteError(w, http.StatusNotFound, httpx.CodeNotFound, "User not found")
			return
		}
		h.log.Error("auth.me.fail", "err", err)
		httpx.WriteInternal(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, meResponse{User: toUserResponse(a)})
}

// ---- helpers ----

func (h *Handler) setSessionCookie(w http.ResponseWriter, value string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     access.CookieName,
		Value:    value,
		Path:     "/",
		Domain:   h.cfg.CookieDomain,
		Expires:  exp,
		MaxAge:   int(h.tokens.TTL() / time.Second),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	})
}

func (h *Handler) expireSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     access.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cfg.CookieDomain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	})
}

func (h *Handler) record(r *http.Request, action, accountID string, meta map[string]any) {
	ua := strings.TrimSpace(r.UserAgent())
	if ua == "" {
		ua = "unknown"
	}
	h.audit.Record(r.Context(), audit.Event{
		Action:    action,
		AccountID: accountID,
		IP:        httpx.ClientIP(r, h.cfg.TrustProxy),
		UserAgent: ua,
		At:        h.now(),
		Meta:      meta,
	})
}

// jitter returns a uniformly random duration in [lo, hi].
func jitter(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo+1)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
