package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/newsinsight/internal/backend"
	"github.com/dmitrijs2005/newsinsight/internal/realtime"
	"github.com/dmitrijs2005/newsinsight/internal/views"
)

// Tables accepted by watch --table.
const (
	watchNews    = "news"
	watchMetrics = "metrics"
)

// watchBuffer bounds events waiting to be printed; later ones are dropped.
const watchBuffer = 64

func (a *App) watchCommand() *cobra.Command {
	var (
		table    string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream realtime changes until interrupted",
		Long: `Print every change event on news items (--table news) or trust metrics
(--table metrics), one per line. Stops on Ctrl-C or after --duration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}
			return a.watch(ctx, cmd.OutOrStdout(), table)
		},
	}
	cmd.Flags().StringVar(&table, "table", watchNews, "What to watch: news or metrics")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this long (0 waits for Ctrl-C)")
	return cmd
}

func (a *App) watch(ctx context.Context, w io.Writer, table string) error {
	var subscribe func(*backend.Client, realtime.Handler) (realtime.Subscription, error)
	switch table {
	case watchNews:
		subscribe = views.SubscribeToNewsUpdates
	case watchMetrics:
		subscribe = views.SubscribeToTrustMetrics
	default:
		return fmt.Errorf("unknown table %q, want %s or %s", table, watchNews, watchMetrics)
	}

	c, err := a.backendClient(ctx)
	if err != nil {
		return err
	}

	events := make(chan realtime.ChangeEvent, watchBuffer)
	sub, err := subscribe(c, func(e realtime.ChangeEvent) {
		select {
		case events <- e:
		default:
			a.logger.Warn(ctx, "watch buffer full, event dropped", "table", e.Table, "event", e.EventType)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	a.logger.Debug(ctx, "watching", "table", table, "backend", c.Kind())

	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-events:
			if err := a.printEvent(w, e); err != nil {
				return err
			}
		}
	}
}

func (a *App) printEvent(w io.Writer, e realtime.ChangeEvent) error {
	if a.jsonOutput {
		return printJSONLine(w, e)
	}

	row := e.New
	if len(row) == 0 {
		row = e.Old
	}
	_, err := fmt.Fprintf(w, "%s %s %s %s\n", e.CommitTimestamp.Local().Format(time.TimeOnly), e.EventType, e.Table, row)
	return err
}
