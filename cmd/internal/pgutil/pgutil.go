// Package pgutil holds the small pgx helpers shared by the Postgres-backed stores.
package pgutil

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DefaultSchema is the schema created by the embedded migrations.
const DefaultSchema = "fakie"

// DB is the subset of *pgxpool.Pool used by stores. It is satisfied by pgxmock pools in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidIdent reports whether s is a legal unquoted PostgreSQL identifier.
func ValidIdent(s string) bool {
	return identRe.MatchString(s)
}

// Ident safely quotes a schema-qualified identifier: "schema"."name".
func Ident(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

// CheckSchema trims and validates a schema name.
func CheckSchema(schema string) (string, error) {
	schema = strings.TrimSpace(schema)
	if schema == "" {
		return "", fmt.Errorf("pgutil: empty schema")
	}
	if !ValidIdent(schema) {
		return "", fmt.Errorf("pgutil: invalid schema identifier %q", schema)
	}
	return schema, nil
}

// UniqueViolation reports whether err is a unique_violation (23505) and returns
// the lower-cased constraint name.
func UniqueViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(pgErr.ConstraintName)), true
}

// ForeignKeyViolation reports whether err is a foreign_key_violation (23503).
func ForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23503"
}

// NullIfEmpty maps "" to SQL NULL.
func NullIfEmpty(s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return v
}
