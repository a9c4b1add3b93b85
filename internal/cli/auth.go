package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/models"
	"github.com/dmitrijs2005/newsinsight/internal/session"
	"github.com/dmitrijs2005/newsinsight/internal/views"
)

// readCredentials prompts for whatever was not given on the command line.
func (a *App) readCredentials(cmd *cobra.Command, email string) (models.Credentials, func(), error) {
	w := cmd.OutOrStdout()

	if email == "" {
		var err error
		if email, err = GetSimpleText(a.reader, "-Enter email", w); err != nil {
			return models.Credentials{}, nil, err
		}
	}

	password, err := GetPassword(a.reader, w)
	if err != nil {
		return models.Credentials{}, nil, err
	}

	wipe := func() { common.WipeByteArray(password) }
	return models.Credentials{Email: email, Password: string(password)}, wipe, nil
}

func (a *App) loginCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, wipe, err := a.readCredentials(cmd, email)
			if err != nil {
				return err
			}
			defer wipe()

			return a.authenticate(cmd, creds, false)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	return cmd
}

func (a *App) registerCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, wipe, err := a.readCredentials(cmd, email)
			if err != nil {
				return err
			}
			defer wipe()

			return a.authenticate(cmd, creds, true)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	return cmd
}

func (a *App) authenticate(cmd *cobra.Command, creds models.Credentials, signUp bool) error {
	ctx := cmd.Context()
	c, err := a.backendClient(ctx)
	if err != nil {
		return err
	}

	var res session.AuthResponse
	if signUp {
		res, err = c.SignUp(ctx, creds)
	} else {
		res, err = c.SignInWithPassword(ctx, creds)
	}
	if err != nil {
		return err
	}
	if res.Error != nil {
		a.logger.Debug(ctx, "authentication rejected", "email", creds.Email, "error", res.Error.Message)
		return res.Error
	}

	if res.Session != nil {
		a.setSignedInAs(res.User.Email)
	}

	w := cmd.OutOrStdout()
	if a.jsonOutput {
		return printJSON(w, res)
	}
	if res.Session == nil {
		_, err = fmt.Fprintf(w, "Registered %s, confirm the email before signing in\n", res.User.Email)
		return err
	}
	_, err = fmt.Fprintf(w, "Signed in as %s\n", res.User.Email)
	return err
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.backendClient(ctx)
			if err != nil {
				return err
			}
			apiErr, err := c.SignOut(ctx)
			if err != nil {
				return err
			}
			a.setSignedInAs("")
			if apiErr != nil {
				return apiErr
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return err
		},
	}
}

// currentUser returns the signed-in user or ErrNotSignedIn.
func (a *App) currentUser(ctx context.Context) (*models.User, error) {
	c, err := a.backendClient(ctx)
	if err != nil {
		return nil, err
	}
	u, err := c.GetUser(ctx)
	if err != nil {
		return nil, err
	}
	if u.User == nil {
		return nil, ErrNotSignedIn
	}
	return u.User, nil
}

func (a *App) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and their profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := a.currentUser(ctx)
			if err != nil {
				return err
			}
			c, err := a.backendClient(ctx)
			if err != nil {
				return err
			}

			profile, err := views.FetchProfile(ctx, c, user.ID)
			if err != nil {
				a.logger.Warn(ctx, "profile unavailable", "user_id", user.ID, "error", err)
			}

			w := cmd.OutOrStdout()
			if a.jsonOutput {
				return printJSON(w, map[string]any{"user": user, "profile": profile})
			}
			fmt.Fprintf(w, "%s (%s)\n", user.Email, user.ID)
			if profile != nil {
				fmt.Fprintf(w, "%s: %d trust points, %d verifications\n", profile.Username, profile.TrustPoints, profile.VerificationsCount)
			}
			return nil
		},
	}
}
