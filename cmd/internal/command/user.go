package command

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"fakie/cmd/identity"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Account commands",
	}
	cmd.AddCommand(userCreateCommand())
	return cmd
}

func userCreateCommand() *cobra.Command {
	var (
		username string
		admin    bool
	)
	cmd := &cobra.Command{
		Use:   "create EMAIL",
		Short: "Create an account",
		Long: "Creates an account for the provided email. The password may be provided via\n" +
			"stdin or through the interactive prompt.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			st, err := openStores(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { runErr = errors.Join(runErr, st.Close()) }()

			passwd, err := prompt("password: ", true)
			if err != nil {
				return err
			}

			role := identity.RoleMember
			if admin {
				role = identity.RoleAdmin
			}
			in := identity.RegisterInput{Username: username, Email: args[0], Password: string(passwd)}
			if fields := st.credentials.ValidateRegistration(in); fields != nil {
				return fieldError(fields)
			}

			a, created, err := st.credentials.EnsureAccount(cmd.Context(), in, role)
			if err != nil {
				return err
			}
			if !created {
				return fmt.Errorf("email %s is already registered", args[0])
			}
			slog.Default().InfoContext(cmd.Context(), "created account",
				slog.String("id", a.ID),
				slog.String("username", a.Username),
				slog.String("role", string(a.Role)),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "display name (3 to 50 characters)")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func fieldError(fields map[string]string) error {
	var errs []error
	for _, k := range []string{"username", "email", "password"} {
		if msg, ok := fields[k]; ok {
			errs = append(errs, fmt.Errorf("%s %s", k, msg))
		}
	}
	return errors.Join(errs...)
}
