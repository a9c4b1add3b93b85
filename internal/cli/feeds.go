package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/newsinsight/internal/backend"
	"github.com/dmitrijs2005/newsinsight/internal/models"
	"github.com/dmitrijs2005/newsinsight/internal/views"
)

// fetchCommand builds a read-only command that loads rows with fetch and
// prints them with toRow.
func fetchCommand[T any](a *App, use, short string, header []string, fetch func(context.Context, *backend.Client) ([]T, error), toRow func(int, T) []string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.backendClient(ctx)
			if err != nil {
				return err
			}

			items, err := fetch(ctx, c)
			if err != nil {
				return err
			}
			if items == nil {
				items = []T{}
			}

			rows := make([][]string, 0, len(items))
			for i, it := range items {
				rows = append(rows, toRow(i, it))
			}
			return a.render(cmd.OutOrStdout(), items, header, rows)
		},
	}
}

func (a *App) newsCommand() *cobra.Command {
	return fetchCommand(a, "news", "List news items, newest first",
		[]string{"ID", "TITLE", "SOURCE", "CATEGORY", "TRUST", "VERIFIED", "CREATED"},
		views.FetchNewsItems,
		func(_ int, n models.NewsItem) []string {
			return []string{n.ID, truncate(n.Title, 48), n.Source, n.Category, formatScore(n.TrustScore), yesNo(n.Verified), formatTime(n.CreatedAt)}
		})
}

func (a *App) metricsCommand() *cobra.Command {
	return fetchCommand(a, "metrics", "List the latest trust metrics",
		[]string{"ID", "METRIC", "SCORE", "TIMESTAMP"},
		views.FetchTrustMetrics,
		func(_ int, m models.TrustMetric) []string {
			return []string{m.ID, m.MetricName, formatScore(m.Score), formatTime(m.Timestamp)}
		})
}

func (a *App) leaderboardCommand() *cobra.Command {
	return fetchCommand(a, "leaderboard", "Show the top profiles by trust points",
		[]string{"RANK", "USERNAME", "TRUST POINTS", "VERIFICATIONS"},
		views.FetchLeaderboard,
		func(i int, p models.UserProfile) []string {
			return []string{strconv.Itoa(i + 1), p.Username, strconv.Itoa(p.TrustPoints), strconv.Itoa(p.VerificationsCount)}
		})
}

func (a *App) rumorsCommand() *cobra.Command {
	return fetchCommand(a, "rumors", "List rumors, newest first",
		[]string{"ID", "CONTENT", "SOURCE", "STATUS", "TRUST", "VOTES"},
		views.FetchRumors,
		func(_ int, r models.Rumor) []string {
			return []string{r.ID, truncate(r.Content, 48), r.Source, string(r.Status), formatScore(r.TrustScore), strconv.Itoa(r.VotesCount)}
		})
}

func (a *App) profileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <user-id>",
		Short: "Show one user profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.backendClient(ctx)
			if err != nil {
				return err
			}

			p, err := views.FetchProfile(ctx, c, args[0])
			if err != nil {
				return err
			}

			header := []string{"ID", "USERNAME", "EMAIL", "TRUST POINTS", "VERIFICATIONS", "JOINED"}
			row := []string{p.ID, p.Username, p.Email, strconv.Itoa(p.TrustPoints), strconv.Itoa(p.VerificationsCount), formatTime(p.CreatedAt)}
			return a.render(cmd.OutOrStdout(), p, header, [][]string{row})
		},
	}
}
