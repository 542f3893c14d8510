// Package migrate applies the embedded schema migrations with goose.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"fakie/cmd/internal/pgutil"
)

//go:embed migrations/*.sql
var migrations embed.FS

const dir = "migrations"

// SchemaEnv selects the schema the migrations create. The SQL files read it
// through goose ENVSUB, so it must be a plain identifier.
const SchemaEnv = "FAKIE_DB_SCHEMA"

// goose keeps its dialect, filesystem and logger in package globals.
var gooseMu sync.Mutex

// Schema returns the target schema: $FAKIE_DB_SCHEMA, or pgutil.DefaultSchema when unset.
func Schema() (string, error) {
	s := os.Getenv(SchemaEnv)
	if s == "" {
		return pgutil.DefaultSchema, nil
	}
	if !pgutil.ValidIdent(s) {
		return "", fmt.Errorf("migrate: %s=%q is not a plain identifier", SchemaEnv, s)
	}
	return s, nil
}

// versionTable keeps one goose history per schema.
func versionTable(schema string) string {
	if schema == pgutil.DefaultSchema {
		return goose.DefaultTablename
	}
	return goose.DefaultTablename + "_" + schema
}

func setup(log *slog.Logger) error {
	schema, err := Schema()
	if err != nil {
		return err
	}
	if log == nil {
		log = slog.Default()
	}
	goose.SetLogger(slog.NewLogLogger(log.Handler(), slog.LevelInfo))
	goose.SetBaseFS(migrations)
	goose.SetTableName(versionTable(schema))
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrate: set dialect: %w", err)
	}
	return nil
}

// OpenDB exposes pool as a *sql.DB for goose. Closing the result does not close pool.
func OpenDB(pool *pgxpool.Pool) (*sql.DB, error) {
	if pool == nil {
		return nil, errors.New("migrate: nil pool")
	}
	return stdlib.OpenDBFromPool(pool), nil
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := setup(log); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate: up: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := setup(log); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate: down: %w", err)
	}
	return nil
}

// Status logs the applied state of every migration.
func Status(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := setup(log); err != nil {
		return err
	}
	if err := goose.StatusContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate: status: %w", err)
	}
	return nil
}

// Version returns the current schema version.
func Version(ctx context.Context, db *sql.DB, log *slog.Logger) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := setup(log); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("migrate: version: %w", err)
	}
	return v, nil
}
