package metrics

import (
	"context"
	"fmt"

	"tunnel-dashboard/cmd/root"
	"tunnel-dashboard/internal/config"
	"tunnel-dashboard/internal/logger"
	"tunnel-dashboard/internal/rpc"
	"tunnel-dashboard/services"

	"github.com/spf13/cobra"
)

var (
	pushGatewayAddr string
)

func init() {
	root.RootCmd.AddCommand(Cmd)
	Cmd.Flags().SortFlags = false
	Cmd.Flags().StringVarP(&pushGatewayAddr, "addr", "a", "", "Pushgateway地址")
}

var Cmd = &cobra.Command{
	Use:   "metrics",
	Short: "采集一次隧道状态并上报Prometheus指标",
	RunE: func(cmd *cobra.Command, args []string) error {
		if pushGatewayAddr == "" {
			pushGatewayAddr = config.Config.Metrics.Pushgateway
		}
		if pushGatewayAddr == "" {
			return fmt.Errorf("pushgateway address is required (--addr or metrics.pushgateway)")
		}
		return collectAndPush(cmd.Context(), &config.Config, pushGatewayAddr)
	},
}

/**
 * Poll the orchestrator once and push the resulting metrics
 * @param {context.Context} ctx - Request context
 * @param {*config.AppConfig} cfg - Application configuration
 * @param {string} addr - Pushgateway address
 * @returns {error} Snapshot or push error
 */
func collectAndPush(ctx context.Context, cfg *config.AppConfig, addr string) error {
	client := rpc.NewHTTPClient(rpc.ConfigFromBackend(&cfg.Backend))
	defer client.Close()

	store := services.NewTableStore()
	defer store.Close()
	notifier := services.NewNotificationCenter(cfg.Notifications.TTL, nil)
	defer notifier.Close()

	poller := services.NewPoller(services.NewTunnelBackend(client), store, notifier, services.PollerConfig{
		HealthInterval: cfg.Polling.HealthInterval,
		StatusInterval: cfg.Polling.StatusInterval,
	})
	if err := poller.RefreshStatus(ctx); err != nil {
		return err
	}
	if err := poller.UpdateHealthStatus(ctx); err != nil {
		logger.Warnf("Health probe before push failed: %v", err)
	}
	if err := services.PushMetrics(addr); err != nil {
		return err
	}
	fmt.Printf("Pushed metrics for %d tunnels to %s\n", len(store.Snapshot().Rows), addr)
	return nil
}
