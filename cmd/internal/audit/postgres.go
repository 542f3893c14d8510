package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fakie/cmd/internal/pgutil"
)

// PostgresSink appends events to <schema>.audit_log.
type PostgresSink struct {
	db     pgutil.DB
	schema string
	log    *slog.Logger
}

// NewPostgresSink returns a sink writing to schema (default "fakie").
func NewPostgresSink(db pgutil.DB, schema string, log *slog.Logger) (*PostgresSink, error) {
	if db == nil {
		return nil, fmt.Errorf("audit: nil db")
	}
	if strings.TrimSpace(schema) == "" {
		schema = pgutil.DefaultSchema
	}
	schema, err := pgutil.CheckSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresSink{db: db, schema: schema, log: log}, nil
}

// Record inserts e. Insert failures are logged and swallowed.
func (s *PostgresSink) Record(ctx context.Context, e Event) {
	action := strings.TrimSpace(e.Action)
	if action == "" {
		return
	}
	at := e.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var meta *string
	if len(e.Meta) > 0 {
		if b, err := json.Marshal(e.Meta); err == nil {
			v := string(b)
			meta = &v
		}
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO `+pgutil.Ident(s.schema, "audit_log")+` (
			account_id, action, created_at, ip, user_agent, meta
		) VALUES ($1, $2, $3, $4, $5, $6::jsonb)`,
		pgutil.NullIfEmpty(e.AccountID), action, at, pgutil.NullIfEmpty(e.IP), pgutil.NullIfEmpty(e.UserAgent), meta,
	)
	if err != nil {
		s.log.Error("audit.insert.fail", "err", err, "action", action)
	}
}
