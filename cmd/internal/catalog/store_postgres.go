package catalog

import (
	"context"
	"errors"
	"fmt"

	"fakie/cmd/internal/pgutil"

	"github.com/jackc/pgx/v5"
)

// table describes how one record type maps onto its Postgres table.
type table[T Record] struct {
	name     string
	resource string

	// columns are selected in this order; nullable text is coalesced to ''.
	columns    string
	scan       func(row pgx.Row) (T, error)
	insertCols string
	insertArgs func(T) []any
	// updateSet uses $1 for the id; updateArgs supplies $1..$n.
	updateSet  string
	updateArgs func(T) []any
}

var spotTable = table[Spot]{
	name:     "skate_spots",
	resource: "spot",
	columns:  `id, name, location, COALESCE(description, ''), difficulty, COALESCE(image_url, ''), created_by, created_at`,
	scan: func(row pgx.Row) (Spot, error) {
		var (
			s    Spot
			diff string
		)
		err := row.Scan(&s.ID, &s.Name, &s.Location, &s.Description, &diff, &s.ImageURL, &s.CreatedBy, &s.CreatedAt)
		s.Difficulty = Difficulty(diff)
		return s, err
	},
	insertCols: `id, name, location, description, difficulty, image_url, created_by, created_at`,
	insertArgs: func(s Spot) []any {
		return []any{s.ID, s.Name, s.Location, pgutil.NullIfEmpty(s.Description), string(s.Difficulty),
			pgutil.NullIfEmpty(s.ImageURL), s.CreatedBy, s.CreatedAt}
	},
	updateSet: `name = $2, location = $3, description = $4, difficulty = $5, image_url = $6`,
	updateArgs: func(s Spot) []any {
		return []any{s.ID, s.Name, s.Location, pgutil.NullIfEmpty(s.Description), string(s.Difficulty),
			pgutil.NullIfEmpty(s.ImageURL)}
	},
}

var gearTable = table[Gear]{
	name:     "skate_gear",
	resource: "gear",
	columns:  `id, name, category, brand, COALESCE(description, ''), rating, COALESCE(image_url, ''), created_by, created_at`,
	scan: func(row pgx.Row) (Gear, error) {
		var (
			g   Gear
			cat string
		)
		err := row.Scan(&g.ID, &g.Name, &cat, &g.Brand, &g.Description, &g.Rating, &g.ImageURL, &g.CreatedBy, &g.CreatedAt)
		g.Category = Category(cat)
		return g, err
	},
	insertCols: `id, name, category, brand, description, rating, image_url, created_by, created_at`,
	insertArgs: func(g Gear) []any {
		return []any{g.ID, g.Name, string(g.Category), g.Brand, pgutil.NullIfEmpty(g.Description), ratingArg(g.Rating),
			pgutil.NullIfEmpty(g.ImageURL), g.CreatedBy, g.CreatedAt}
	},
	updateSet: `name = $2, category = $3, brand = $4, description = $5, rating = $6, image_url = $7`,
	updateArgs: func(g Gear) []any {
		return []any{g.ID, g.Name, string(g.Category), g.Brand, pgutil.NullIfEmpty(g.Description), ratingArg(g.Rating),
			pgutil.NullIfEmpty(g.ImageURL)}
	},
}

// PostgresStore implements Store over PostgreSQL. The pool is owned by the caller.
type PostgresStore[T Record] struct {
	db     pgutil.DB
	schema string
	t      table[T]
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*postgresOptions) error

type postgresOptions struct {
	schema string
}

// WithSchema sets the schema holding the catalog tables (default "fakie").
func WithSchema(schema string) PostgresOption {
	return func(o *postgresOptions) error {
		v, err := pgutil.CheckSchema(schema)
		if err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		o.schema = v
		return nil
	}
}

// NewPostgresSpotStore returns the spot store backed by fakie.skate_spots.
func NewPostgresSpotStore(db pgutil.DB, opts ...PostgresOption) (*PostgresStore[Spot], error) {
	return newPostgresStore(db, spotTable, opts)
}

// NewPostgresGearStore returns the gear store backed by fakie.skate_gear.
func NewPostgresGearStore(db pgutil.DB, opts ...PostgresOption) (*PostgresStore[Gear], error) {
	return newPostgresStore(db, gearTable, opts)
}

func newPostgresStore[T Record](db pgutil.DB, t table[T], opts []PostgresOption) (*PostgresStore[T], error) {
	o := postgresOptions{schema: pgutil.DefaultSchema}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	if db == nil {
		return nil, fmt.Errorf("catalog: nil db")
	}
	return &PostgresStore[T]{db: db, schema: o.schema, t: t}, nil
}

func (s *PostgresStore[T]) ident() string { return pgutil.Ident(s.schema, s.t.name) }

func (s *PostgresStore[T]) List(ctx context.Context) ([]T, error) {
	const op = "catalog.List"
	rows, err := s.db.Query(ctx,
		`SELECT `+s.t.columns+` FROM `+s.ident()+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		rec, err := s.t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (s *PostgresStore[T]) Get(ctx context.Context, id string) (T, error) {
	const op = "catalog.Get"
	rec, err := s.t.scan(s.db.QueryRow(ctx,
		`SELECT `+s.t.columns+` FROM `+s.ident()+` WHERE id = $1`, id))
	if err != nil {
		var zero T
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, NotFoundError{Op: op, Resource: s.t.resource}
		}
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

func (s *PostgresStore[T]) Create(ctx context.Context, rec T) error {
	const op = "catalog.Create"
	args := s.t.insertArgs(rec)
	_, err := s.db.Exec(ctx,
		`INSERT INTO `+s.ident()+` (`+s.t.insertCols+`) VALUES (`+placeholders(len(args))+`)`,
		args...)
	if err != nil {
		if _, ok := pgutil.UniqueViolation(err); ok {
			return fmt.Errorf("%s: %w: %s id", op, ErrConflict, s.t.resource)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *PostgresStore[T]) Update(ctx context.Context, rec T) error {
	const op = "catalog.Update"
	tag, err := s.db.Exec(ctx,
		`UPDATE `+s.ident()+` SET `+s.t.updateSet+` WHERE id = $1`,
		s.t.updateArgs(rec)...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: s.t.resource}
	}
	return nil
}

func (s *PostgresStore[T]) Delete(ctx context.Context, id string) error {
	const op = "catalog.Delete"
	tag, err := s.db.Exec(ctx, `DELETE FROM `+s.ident()+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: s.t.resource}
	}
	return nil
}

func ratingArg(r *int) any {
	if r == nil {
		return nil
	}
	return *r
}

func placeholders(n int) string {
	b := make([]byte, 0, n*4)
	for i := 1; i <= n; i++ {
		if i > 1 {
			b = append(b, ", "...)
		}
		b = append(b, '$')
		b = fmt.Appendf(b, "%d", i)
	}
	return string(b)
}
