package command

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"fakie/cmd/internal/migrate"
)

func migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema commands",
	}
	cmd.AddCommand(
		migrateStep("up", "Apply all pending migrations", migrate.Up),
		migrateStep("down", "Roll back the most recent migration", migrate.Down),
		migrateStep("status", "Print the applied state of every migration", migrate.Status),
		migrateVersionCommand(),
	)
	return cmd
}

func migrateStep(use, short string, step func(context.Context, *sql.DB, *slog.Logger) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			db, closeDB, err := openSQL(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { runErr = errors.Join(runErr, closeDB()) }()

			return step(cmd.Context(), db, slog.Default())
		},
	}
}

func migrateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			db, closeDB, err := openSQL(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { runErr = errors.Join(runErr, closeDB()) }()

			v, err := migrate.Version(cmd.Context(), db, slog.Default())
			if err != nil {
				return err
			}
			cmd.Printf("%d\n", v)
			return nil
		},
	}
}
