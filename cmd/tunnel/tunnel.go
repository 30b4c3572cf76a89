package tunnel

import (
	"fmt"
	"io"
	"os"

	"tunnel-dashboard/cmd/root"
	"tunnel-dashboard/internal/config"
	"tunnel-dashboard/internal/models"
	"tunnel-dashboard/internal/rpc"
	"tunnel-dashboard/services"

	"github.com/spf13/cobra"
)

var tunnelCmd = &cobra.Command{
	Use:   "tunnel",
	Short: "Tunnel operations (list, health, start/stop/replace, watch)",
	Long:  `Tunnel operations against the tunnel orchestrator (list, health, start/stop/replace, watch)`,
}

const tunnelExample = `  # show all tunnels
  tunnel-dashboard tunnel list

  # start tunnels 0 to 4
  tunnel-dashboard tunnel start 0-4`

// consoleNotifier prints notifications instead of showing toasts
type consoleNotifier struct {
	w io.Writer
}

func (n consoleNotifier) Notify(title, message string, severity models.Severity) {
	printNotification(n.w, title, message, severity)
}

func printNotification(w io.Writer, title, message string, severity models.Severity) {
	fmt.Fprintf(w, "[%s] %s: %s\n", severity, title, message)
}

// newBackend connects to the orchestrator named by the [backend] config section.
func newBackend() (*services.TunnelBackend, rpc.HTTPClient) {
	client := rpc.NewHTTPClient(rpc.ConfigFromBackend(&config.Config.Backend))
	return services.NewTunnelBackend(client), client
}

// newDispatcher builds a dispatcher without follow-up probe for one-shot commands.
func newDispatcher() (*services.Dispatcher, rpc.HTTPClient) {
	backend, client := newBackend()
	return services.NewDispatcher(backend, consoleNotifier{w: os.Stdout}, services.NewTimerScheduler(), nil, 0), client
}

func init() {
	root.RootCmd.AddCommand(tunnelCmd)

	tunnelCmd.Example = tunnelExample
}
