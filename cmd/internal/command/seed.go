package command

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"fakie/cmd/internal/seed"
)

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo accounts, spots and gear reviews",
		Long: "Creates the demo accounts unless their emails already exist, then fills the\n" +
			"spot and gear tables if they are empty. Safe to run more than once.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			st, err := openStores(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { runErr = errors.Join(runErr, st.Close()) }()

			res, err := seed.Seeder{
				Accounts: st.credentials,
				Spots:    st.spots,
				Gear:     st.gear,
				Log:      slog.Default(),
			}.Run(cmd.Context())
			if err != nil {
				return err
			}
			slog.Default().InfoContext(cmd.Context(), "seed complete",
				slog.Int("accounts", res.Accounts),
				slog.Int("spots", res.Spots),
				slog.Int("gear", res.Gear),
			)
			return nil
		},
	}
}
