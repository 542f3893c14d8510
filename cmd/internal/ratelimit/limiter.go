package ratelimit

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"fakie/cmd/internal/httpx"
)

// RejectFunc observes a rejected request.
type RejectFunc func(r *http.Request, route, clientIP string, c Counter)

// Limiter applies Rules to HTTP routes.
type Limiter struct {
	store      CounterStore
	log        *slog.Logger
	trustProxy bool
	now        func() time.Time
	onReject   RejectFunc
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLogger sets the limiter logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Limiter) {
		if log != nil {
			l.log = log
		}
	}
}

// WithTrustProxy keys clients by X-Forwarded-For / X-Real-IP.
func WithTrustProxy(trust bool) Option {
	return func(l *Limiter) { l.trustProxy = trust }
}

// WithClock overrides the limiter clock.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithRejectHook is called for every 429.
func WithRejectHook(fn RejectFunc) Option {
	return func(l *Limiter) { l.onReject = fn }
}

// New returns a Limiter over store.
func New(store CounterStore, opts ...Option) *Limiter {
	l := &Limiter{
		store: store,
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Key is the counter key for a client on a route.
func Key(clientIP, route string) string {
	return clientIP + "|" + route
}

// Middleware limits next by rule under the name route.
func (l *Limiter) Middleware(route string, rule Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !rule.Enabled() || l.store == nil {
			return next
		}
		msg := rule.Message
		if msg == "" {
			msg = "Too many requests"
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := httpx.ClientIP(r, l.trustProxy)
			now := l.now()

			c, err := l.store.Increment(r.Context(), Key(ip, route), rule.Window, now)
			if err != nil {
				l.log.Error("ratelimit.store.fail", "route", route, "err", err)
				next.ServeHTTP(w, r)
				return
			}

			if c.Count > rule.Max {
				if l.onReject != nil {
					l.onReject(r, route, ip, c)
				}
				l.log.Warn("ratelimit.reject", "route", route, "remote", ip, "count", c.Count, "reset_at", c.ResetAt)
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfterSeconds(c.ResetAt, now), 10))
				httpx.WriteError(w, http.StatusTooManyRequests, httpx.CodeRateLimited, msg)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(resetAt, now time.Time) int64 {
	secs := int64(math.Ceil(resetAt.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
