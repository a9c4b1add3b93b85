package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/newsinsight/internal/preferences"
)

func (a *App) themeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the dashboard theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPrefs(cmd, func(ctx context.Context, s *preferences.Store) (preferences.Theme, error) {
				return s.Theme(ctx)
			})
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the stored theme",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withPrefs(cmd, func(ctx context.Context, s *preferences.Store) (preferences.Theme, error) {
					return s.Theme(ctx)
				})
			},
		},
		&cobra.Command{
			Use:       "set <dark|light>",
			Short:     "Store a theme",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{string(preferences.ThemeDark), string(preferences.ThemeLight)},
			RunE: func(cmd *cobra.Command, args []string) error {
				t, err := preferences.ParseTheme(args[0])
				if err != nil {
					return err
				}
				return a.withPrefs(cmd, func(ctx context.Context, s *preferences.Store) (preferences.Theme, error) {
					return t, s.SetTheme(ctx, t)
				})
			},
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Switch between dark and light",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withPrefs(cmd, func(ctx context.Context, s *preferences.Store) (preferences.Theme, error) {
					return s.Toggle(ctx)
				})
			},
		},
	)
	return cmd
}

// withPrefs opens the preferences file for one operation and prints the
// resulting theme.
func (a *App) withPrefs(cmd *cobra.Command, fn func(context.Context, *preferences.Store) (preferences.Theme, error)) error {
	ctx := cmd.Context()
	s, err := a.openPrefs(ctx, a.config.PreferencesPath, a.logger)
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := fn(ctx, s)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if a.jsonOutput {
		return printJSON(w, map[string]string{"theme": string(t)})
	}
	_, err = fmt.Fprintln(w, t)
	return err
}
