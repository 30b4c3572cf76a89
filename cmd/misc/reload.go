package misc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"tunnel-dashboard/cmd/root"
	"tunnel-dashboard/internal/config"
	"tunnel-dashboard/internal/models"
	"tunnel-dashboard/internal/rpc"

	"github.com/spf13/cobra"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload dashboard configuration",
	Long:  `Reload configuration of a running dashboard by calling its reload API`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := dashboardClient(&config.Config.Server)
		defer client.Close()
		return reloadServerConfig(cmd.Context(), client, os.Stdout)
	},
}

/**
 * Reload dashboard configuration
 * @param {context.Context} ctx - Request context
 * @param {rpc.HTTPClient} client - Client of the running dashboard
 * @param {io.Writer} w - Output
 * @returns {error} Connection or API error
 */
func reloadServerConfig(ctx context.Context, client rpc.HTTPClient, w io.Writer) error {
	resp, err := rpc.Call(ctx, client, http.MethodPost, "/api/v1/reload", nil)
	if err != nil {
		return fmt.Errorf("failed to call dashboard API: %w", err)
	}
	var result models.CommandResult
	if err := resp.Decode(&result); err != nil || result.Message == "" {
		fmt.Fprintf(w, "Successfully reloaded dashboard configuration, status code: %d\n", resp.StatusCode)
		return nil
	}
	fmt.Fprintln(w, result.Message)
	return nil
}

func init() {
	root.RootCmd.AddCommand(reloadCmd)
}
