package pgutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIdent(t *testing.T) {
	if got := Ident("fakie", "accounts"); got != `"fakie"."accounts"` {
		t.Fatalf("Ident()=%s", got)
	}
}

func TestCheckSchema(t *testing.T) {
	if _, err := CheckSchema(" "); err == nil {
		t.Fatalf("expected error for blank schema")
	}
	if _, err := CheckSchema("fakie; drop table x"); err == nil {
		t.Fatalf("expected error for invalid identifier")
	}
	got, err := CheckSchema(" fakie_test ")
	if err != nil || got != "fakie_test" {
		t.Fatalf("CheckSchema()=%q,%v", got, err)
	}
}

func TestUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "UQ_Accounts_Email_Norm"})
	c, ok := UniqueViolation(wrapped)
	if !ok || c != "uq_accounts_email_norm" {
		t.Fatalf("UniqueViolation()=%q,%v", c, ok)
	}
	if _, ok := UniqueViolation(&pgconn.PgError{Code: "23503"}); ok {
		t.Fatalf("foreign key violation must not classify as unique")
	}
	if _, ok := UniqueViolation(errors.New("boom")); ok {
		t.Fatalf("plain error must not classify as unique")
	}
	if !ForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("expected foreign key violation")
	}
}
