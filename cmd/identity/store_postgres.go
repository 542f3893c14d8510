package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fakie/cmd/internal/pgutil"

	"github.com/jackc/pgx/v5"
)

// PostgresStore implements account persistence over PostgreSQL.
//
// The pgx pool is owned by the caller; this store must NOT close it.
// Schema/table identifiers are quoted to avoid SQL injection via identifiers.
type PostgresStore struct {
	db     pgutil.DB
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

// WithSchema sets the Postgres schema used by the identity store (default "fakie").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		v, err := pgutil.CheckSchema(schema)
		if err != nil {
			return fmt.Errorf("identity: %w", err)
		}
		s.schema = v
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(db pgutil.DB, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		db:     db,
		schema: pgutil.DefaultSchema,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.db == nil {
		return nil, fmt.Errorf("identity: nil db")
	}
	return st, nil
}

const accountColumns = `id, username, email, email_norm, password_hash, role, created_at`

// CreateAccount inserts a. The unique constraint on email_norm makes concurrent
// registrations of the same email resolve to one insert and one ConflictError.
func (s *PostgresStore) CreateAccount(ctx context.Context, a Account) error {
	const op = "identity.CreateAccount"

	if strings.TrimSpace(a.ID) == "" || a.EmailNorm == "" || a.PasswordHash == "" {
		return invalid(op, "missing id, email or password hash")
	}
	if !a.Role.Valid() {
		return invalid(op, "invalid role")
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO `+pgutil.Ident(s.schema, "accounts")+` (`+accountColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Username, a.Email, a.EmailNorm, a.PasswordHash, a.Role.String(), a.CreatedAt,
	)
	if err != nil {
		if constraint, ok := pgutil.UniqueViolation(err); ok {
			return ConflictError{Op: op, Field: conflictField(constraint)}
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AccountByEmail looks up an account by normalized email.
func (s *PostgresStore) AccountByEmail(ctx context.Context, emailNorm string) (Account, error) {
	const op = "identity.AccountByEmail"
	row := s.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM `+pgutil.Ident(s.schema, "accounts")+` WHERE email_norm = $1`,
		emailNorm,
	)
	return scanAccount(op, row)
}

// AccountByID looks up an account by id.
func (s *PostgresStore) AccountByID(ctx context.Context, id string) (Account, error) {
	const op = "identity.AccountByID"
	row := s.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM `+pgutil.Ident(s.schema, "accounts")+` WHERE id = $1`,
		id,
	)
	return scanAccount(op, row)
}

func scanAccount(op string, row pgx.Row) (Account, error) {
	var (
		a    Account
		role string
	)
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.EmailNorm, &a.PasswordHash, &role, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, NotFoundError{Op: op, Resource: "account"}
		}
		return Account{}, fmt.Errorf("%s: %w", op, err)
	}
	a.Role, err = ParseRole(role)
	if err != nil {
		return Account{}, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// conflictField prefers stable constraint names and falls back to substring matching.
func conflictField(constraint string) string {
	switch {
	case constraint == "uq_accounts_email_norm", strings.Contains(constraint, "email"):
		return "email"
	case strings.Contains(constraint, "pkey"):
		return "id"
	default:
		return "unique"
	}
}
