package command

import (
	"log/slog"

	"github.com/spf13/cobra"

	"fakie/cmd/internal/app"
)

func serveCommand() *cobra.Command {
	var (
		addr    string
		migrate bool
		seed    bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the FAKIE HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.HTTPAddr = addr
			}
			if cmd.Flags().Changed("migrate") {
				cfg.AutoMigrate = migrate
			}
			if cmd.Flags().Changed("seed") {
				cfg.SeedDemo = seed
			}
			return app.Serve(cmd.Context(), cfg, slog.Default())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides FAKIE_HTTP_ADDR)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	cmd.Flags().BoolVar(&seed, "seed", false, "load the demo data set before serving")
	return cmd
}
