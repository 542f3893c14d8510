package command

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/term"

	"fakie/cmd/identity"
	"fakie/cmd/internal/app"
	"fakie/cmd/internal/catalog"
	"fakie/cmd/internal/migrate"
	"fakie/cmd/security/password"
)

type configKey struct{}

var errNoDatabase = errors.New("FAKIE_DATABASE_URL is required for this command")

func prompt(prompt string, mask bool) ([]byte, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		if _, err := os.Stderr.WriteString(prompt); err != nil {
			return nil, err
		}
	}
	line, err := readLine(os.Stdin, mask)
	if mask && term.IsTerminal(int(os.Stdin.Fd())) {
		_, _ = os.Stderr.WriteString("\n")
	}
	return line, err
}

// readLine reads one line, echo-free on a terminal when mask is set.
func readLine(stdin *os.File, mask bool) ([]byte, error) {
	if mask && term.IsTerminal(int(stdin.Fd())) {
		return term.ReadPassword(int(stdin.Fd()))
	}
	return scanLine(stdin)
}

func scanLine(r io.Reader) ([]byte, error) {
	var buf [1]byte
	var ret []byte

	for {
		n, err := r.Read(buf[:])
		if n > 0 {
			switch buf[0] {
			case '\b':
				if len(ret) > 0 {
					ret = ret[:len(ret)-1]
				}
			case '\n':
				if runtime.GOOS != "windows" {
					return ret, nil
				}
			case '\r':
				if runtime.GOOS == "windows" {
					return ret, nil
				}
			default:
				ret = append(ret, buf[0])
			}
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(ret) > 0 {
				return ret, nil
			}
			return ret, err
		}
	}
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown-dev"
	}
	ver := "unknown"
	dirty := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			ver = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if dirty {
		ver += "-dev"
	}
	return ver
}

func loadConfig(ctx context.Context) (app.Config, error) {
	cfg, ok := ctx.Value(configKey{}).(app.Config)
	if !ok {
		return app.Config{}, errors.New("config resolution failed")
	}
	return cfg, nil
}

func openPool(ctx context.Context) (app.Config, *pgxpool.Pool, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return app.Config{}, nil, err
	}
	if cfg.DatabaseURL == "" {
		return app.Config{}, nil, errNoDatabase
	}
	pool, err := app.NewDBPool(ctx, cfg)
	if err != nil {
		return app.Config{}, nil, err
	}
	return cfg, pool, nil
}

// openSQL returns a database/sql handle for goose plus a closer for it and the pool.
func openSQL(ctx context.Context) (*sql.DB, func() error, error) {
	_, pool, err := openPool(ctx)
	if err != nil {
		return nil, nil, err
	}
	db, err := migrate.OpenDB(pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return db, func() error {
		err := db.Close()
		pool.Close()
		return err
	}, nil
}

type stores struct {
	pool        *pgxpool.Pool
	credentials *identity.Credentials
	spots       catalog.Store[catalog.Spot]
	gear        catalog.Store[catalog.Gear]
}

func (s *stores) Close() error {
	s.pool.Close()
	return nil
}

func openStores(ctx context.Context) (*stores, error) {
	cfg, pool, err := openPool(ctx)
	if err != nil {
		return nil, err
	}
	st := &stores{pool: pool}

	build := func() error {
		pw, err := password.FromEnv()
		if err != nil {
			return fmt.Errorf("password config: %w", err)
		}
		accounts, err := identity.NewPostgresStore(pool, identity.WithSchema(cfg.DBSchema))
		if err != nil {
			return err
		}
		if st.credentials, err = identity.NewCredentials(accounts, pw); err != nil {
			return err
		}
		if st.spots, err = catalog.NewPostgresSpotStore(pool, catalog.WithSchema(cfg.DBSchema)); err != nil {
			return err
		}
		st.gear, err = catalog.NewPostgresGearStore(pool, catalog.WithSchema(cfg.DBSchema))
		return err
	}
	if err := build(); err != nil {
		pool.Close()
		return nil, err
	}
	return st, nil
}
