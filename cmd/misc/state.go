package misc

import (
	"context"
	"fmt"
	"io"
	"os"

	"tunnel-dashboard/cmd/root"
	"tunnel-dashboard/internal/config"
	"tunnel-dashboard/internal/models"
	"tunnel-dashboard/internal/rpc"

	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Display state of the running dashboard",
	Long:  `Display version, uptime, request counters and table state of the running dashboard`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := dashboardClient(&config.Config.Server)
		defer client.Close()
		return showServerState(cmd.Context(), client, os.Stdout)
	},
}

const stateExample = `  # Display dashboard states
  tunnel-dashboard state`

func showServerState(ctx context.Context, client rpc.HTTPClient, w io.Writer) error {
	resp, err := client.Get(ctx, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to call dashboard API: %w", err)
	}
	if err := resp.Err(); err != nil {
		return err
	}

	var health models.DashboardHealth
	if err := resp.Decode(&health); err != nil {
		return fmt.Errorf("failed to unmarshal state response: %w", err)
	}
	displayStates(w, &health)
	return nil
}

func displayStates(w io.Writer, h *models.DashboardHealth) {
	fmt.Fprintln(w, "=== Tunnel Dashboard States ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "版本: %s\n", h.Version)
	fmt.Fprintf(w, "启动时间: %s\n", h.StartTime)
	fmt.Fprintf(w, "运行时长: %s\n", h.Uptime)
	fmt.Fprintf(w, "状态: %s\n", h.Status)
	fmt.Fprintln(w)

	m := h.Metrics
	fmt.Fprintf(w, "隧道行数: %d (generation %d)\n", m.Rows, m.Generation)
	fmt.Fprintf(w, "最近刷新: %s\n", orNever(m.LastRefresh))
	fmt.Fprintf(w, "最近探测: %s\n", orNever(m.LastProbe))
	fmt.Fprintf(w, "刷新进行中: %v\n", m.RefreshRunning)
	fmt.Fprintf(w, "请求总数: %d, 错误请求: %d\n", m.TotalRequests, m.ErrorRequests)
}

func orNever(s string) string {
	if s == "" {
		return "never"
	}
	return s
}

func init() {
	root.RootCmd.AddCommand(stateCmd)
	stateCmd.Example = stateExample
}
