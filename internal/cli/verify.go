package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/newsinsight/internal/models"
	"github.com/dmitrijs2005/newsinsight/internal/query"
	"github.com/dmitrijs2005/newsinsight/internal/views"
)

func (a *App) verifyCommand() *cobra.Command {
	var reject bool

	cmd := &cobra.Command{
		Use:   "verify <news-id>",
		Short: "Record your verdict on a news item",
		Args:  cobra.ExactArgs(1),
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

			res, err := views.SubmitVerification(ctx, c, args[0], !reject, user.ID)
			if err != nil {
				return err
			}
			rows, err := query.Decode[models.Verification](res)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if a.jsonOutput {
				return printJSON(w, rows)
			}
			verdict := "verified"
			if reject {
				verdict = "disputed"
			}
			_, err = fmt.Fprintf(w, "Marked news %s as %s\n", args[0], verdict)
			return err
		},
	}
	cmd.Flags().BoolVar(&reject, "reject", false, "Dispute the item instead of verifying it")
	return cmd
}
