package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-pawhealth/pkg/client"
	"github.com/goliatone/go-pawhealth/pkg/renderers/tui"
	"github.com/goliatone/go-pawhealth/pkg/session"
)

func (a *App) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prompts := a.prompts()
			if strings.TrimSpace(email) == "" {
				var err error
				if email, err = prompts.Input(ctx, tui.InputConfig{Message: "Email"}); err != nil {
					return err
				}
			}
			password, err := prompts.Password(ctx, tui.InputConfig{Message: "Password"})
			if err != nil {
				return err
			}

			c, err := a.apiClient(nil)
			if err != nil {
				return err
			}
			tok, err := c.Login(ctx, email, password)
			if err != nil {
				return err
			}
			user, err := c.WithTokens(client.StaticToken(tok.AccessToken)).Me(ctx)
			if err != nil {
				return err
			}

			deps, err := a.sessionDeps()
			if err != nil {
				return err
			}
			sess, err := session.Start(ctx, deps, tok.AccessToken, user)
			if err != nil {
				return err
			}
			sess.Messages.Success(fmt.Sprintf("Signed in as %s", displayName(user)))
			a.flush(sess)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (prompted when empty)")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			deps, err := a.sessionDeps()
			if err != nil {
				return err
			}
			sess, err := session.Restore(ctx, deps)
			if errors.Is(err, session.ErrNoSession) {
				fmt.Fprintln(a.out, "Not signed in")
				return nil
			}
			if err != nil {
				return err
			}
			if err := sess.Close(ctx); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, c, err := a.signedInClient(cmd.Context())
			if err != nil {
				return err
			}
			user, err := sess.Refresh(cmd.Context(), c)
			if err != nil {
				return err
			}
			return a.printJSON(user)
		},
	}
}

func displayName(u client.User) string {
	for _, candidate := range []string{u.Name, u.Username, u.Email} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return u.ID
}
