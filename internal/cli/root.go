package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/newsinsight/internal/buildinfo"
)

// RootCommand builds the command tree. Flags bind to the App, so a tree is
// built per invocation.
func (a *App) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "newsinsight",
		Short: "NewsInsight command-line client",
		Long: `Browse the NewsInsight feeds, sign in, verify news and follow
realtime changes. The backend is chosen from the configuration: a remote
API when -u/-k are set, PostgreSQL when -d is set, otherwise the built-in
demo data.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.jsonOutput, _ = cmd.Flags().GetBool("json")
			if verbose {
				a.level.Set(slog.LevelDebug)
			}
		},
	}
	root.SetOut(a.out)
	root.SetIn(a.reader)

	root.PersistentFlags().Bool("json", false, "Print results as JSON")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log diagnostics to stderr")

	root.AddCommand(
		a.loginCommand(),
		a.registerCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.newsCommand(),
		a.metricsCommand(),
		a.leaderboardCommand(),
		a.rumorsCommand(),
		a.profileCommand(),
		a.watchCommand(),
		a.verifyCommand(),
		a.themeCommand(),
		a.uploadCommand(),
		a.downloadCommand(),
		a.shellCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Run: func(cmd *cobra.Command, args []string) {
				buildinfo.PrintBuildData(cmd.OutOrStdout())
			},
		},
	)

	return root
}
