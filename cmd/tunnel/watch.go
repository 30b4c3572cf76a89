package tunnel

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tunnel-dashboard/internal/config"
	"tunnel-dashboard/internal/models"
	"tunnel-dashboard/services"

	"github.com/spf13/cobra"
)

var watchNoClear bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep a live tunnel table in the terminal",
	Long:  `Runs the same dual-cadence polling as the dashboard and reprints the table on every snapshot and health probe`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return watchTunnels(ctx, os.Stdout, &config.Config.Polling)
	},
}

/**
 * Poll the orchestrator and reprint the table until ctx is done
 * @param {context.Context} ctx - Stops watching
 * @param {io.Writer} w - Output
 * @param {*config.PollingConfig} polling - Cadences
 * @returns {error} Always nil, failures are printed as they happen
 * @description
 * - Notifications travel through the store's event stream, so only this loop writes to w
 */
func watchTunnels(ctx context.Context, w io.Writer, polling *config.PollingConfig) error {
	backend, client := newBackend()
	defer client.Close()

	store := services.NewTableStore()
	defer store.Close()
	events, unsubscribe := store.Subscribe()
	defer unsubscribe()

	notifier := services.NewNotificationCenter(config.Config.Notifications.TTL, store)
	defer notifier.Close()

	poller := services.NewPoller(backend, store, notifier, services.PollerConfig{
		HealthInterval: polling.HealthInterval,
		StatusInterval: polling.StatusInterval,
	})
	poller.Start(ctx)
	defer poller.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Kind == models.EventNotification && ev.Notification != nil {
				printNotification(w, ev.Notification.Title, ev.Notification.Message, ev.Notification.Severity)
				continue
			}
			if ev.Kind != models.EventSnapshot && ev.Kind != models.EventHealth {
				continue
			}
			if !watchNoClear {
				fmt.Fprint(w, "\033[H\033[2J")
			}
			view := store.Snapshot()
			fmt.Fprintf(w, "Updated %s (%s)\n", time.Now().Format(time.TimeOnly), ev.Kind)
			printRows(w, view.Rows, view.TotalMemoryMB)
		}
	}
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoClear, "no-clear", false, "Append output instead of clearing the screen")
	tunnelCmd.AddCommand(watchCmd)
}
