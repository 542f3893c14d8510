// Package command contains the fakie CLI command constructors.
package command

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"fakie/cmd/internal/app"
)

// RootCommand instantiates the root command, with all sub-commands bound.
func RootCommand() *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:          "fakie [command] [flags]",
		Short:        "The FAKIE skate spot and gear review API",
		Version:      version(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.LoadConfig()
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			logger := app.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogColor)
			slog.SetDefault(logger)
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		seedCommand(),
		userCommand(),
	)

	return cmd
}
