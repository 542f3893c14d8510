// Package audit records security-relevant events (logins, registrations,
// rate-limit rejections). Events are never returned to clients.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// Event actions.
const (
	ActionLoginFailed     = "auth.login.failed"
	ActionLoginSuccess    = "auth.login.success"
	ActionRegister        = "auth.register"
	ActionLogout          = "auth.logout"
	ActionRateLimitReject = "ratelimit.reject"
)

// Event is one audit record. AccountID is empty when the caller is unknown.
type Event struct {
	Action    string
	AccountID string
	IP        string
	UserAgent string
	At        time.Time
	Meta      map[string]any
}

// Sink receives audit events. Implementations handle their own failures.
type Sink interface {
	Record(ctx context.Context, e Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Record(context.Context, Event) {}

// LogSink writes events to a structured logger. Failures log at warn level.
type LogSink struct {
	Log *slog.Logger
}

func (s LogSink) Record(ctx context.Context, e Event) {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	level := slog.LevelInfo
	switch e.Action {
	case ActionLoginFailed, ActionRateLimitReject:
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("remote", e.IP),
		slog.String("user_agent", e.UserAgent),
		slog.Time("at", e.At),
	}
	if e.AccountID != "" {
		attrs = append(attrs, slog.String("account_id", e.AccountID))
	}
	for k, v := range e.Meta {
		attrs = append(attrs, slog.Any(k, v))
	}
	log.LogAttrs(ctx, level, e.Action, attrs...)
}

// Multi fans an event out to every sink.
type Multi []Sink

func (m Multi) Record(ctx context.Context, e Event) {
	for _, s := range m {
		if s != nil {
			s.Record(ctx, e)
		}
	}
}

// Func adapts a function to Sink.
type Func func(ctx context.Context, e Event)

func (f Func) Record(ctx context.Context, e Event) { f(ctx, e) }
