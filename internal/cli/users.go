package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirefeed/internal/app"
	"github.com/vovakirdan/wirefeed/internal/auth"
	"github.com/vovakirdan/wirefeed/internal/store"
)

func newRegisterCmd(s *session) *cobra.Command {
	var creds credentials

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if a.Auth.Exists(ctx, creds.email) {
					return fmt.Errorf("%w: %s", store.ErrDuplicateUser, auth.NormalizeEmail(creds.email))
				}
				password, err := creds.resolvePassword(cmd)
				if err != nil {
					return err
				}
				user, err := a.Auth.Register(ctx, creds.email, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registered %s (id %d)\n", user.Email, user.ID)
				return nil
			})
		},
	}
	creds.bind(cmd)
	return cmd
}

func newLoginCmd(s *session) *cobra.Command {
	var creds credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check account credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.withApp(cmd, func(ctx context.Context, a *app.App) error {
				user, err := authenticate(ctx, cmd, a, &creds)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "authenticated as %s (id %d)\n", user.Email, user.ID)
				return nil
			})
		},
	}
	creds.bind(cmd)
	return cmd
}

// authenticate resolves the password and checks the credentials against the store.
func authenticate(ctx context.Context, cmd *cobra.Command, a *app.App, creds *credentials) (*store.User, error) {
	password, err := creds.resolvePassword(cmd)
	if err != nil {
		return nil, err
	}
	return a.Auth.Authenticate(ctx, creds.email, password)
}
