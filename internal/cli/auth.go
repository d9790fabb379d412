package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

func newLoginCmd(a *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e := a.env

			if email == "" || password == "" {
				if email == "" {
					email, _, _ = e.store.GetPreference(ctx, store.PrefLastUser)
				}
				if err := promptCredentials(&email, &password); err != nil {
					return err
				}
			}

			var user model.User
			err := e.session.Login(ctx, email, password, func(token string) {
				u, err := e.verifier.Identity(token)
				if err != nil {
					log.WithError(err).Warn("decoding new access token failed")
					return
				}
				user = u
			})
			if api.IsAuthError(err) {
				return fmt.Errorf("login failed: %s", api.UserMessage(err))
			}
			if err != nil {
				return describe(err)
			}

			if err := e.store.SetPreference(ctx, store.PrefLastUser, strings.TrimSpace(email)); err != nil {
				log.WithError(err).Warn("remembering last user failed")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", displayName(user, email))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", envOr("TASKBOARD_PASSWORD", ""), "Account password (prompted when empty)")
	return cmd
}

func promptCredentials(email, password *string) error {
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Value(email).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("email is required")
				}
				return nil
			}),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("reading credentials: %w", err)
	}
	return nil
}

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.env.session.Logout(ctx); err != nil {
				return err
			}
			if err := a.env.forgetCookies(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := currentUser(cmd.Context(), a)
			if err != nil {
				return describe(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", displayName(user, ""))
			if user.Email != "" {
				fmt.Fprintf(out, "email: %s\n", user.Email)
			}
			fmt.Fprintf(out, "id:    %s\n", user.ID)
			return nil
		},
	}
}

func displayName(u model.User, fallback string) string {
	if name := u.DisplayName(); name != "" {
		return name
	}
	if fallback != "" {
		return fallback
	}
	return u.ID.String()
}
