package tunnel

import (
	"tunnel-dashboard/internal/models"

	"github.com/spf13/cobra"
)

var (
	startBuild         bool
	startUpdateConfigs bool
)

var startCmd = &cobra.Command{
	Use:   "start [tunnel_id|range]",
	Short: "Start a tunnel or a range of tunnels (default 0)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := models.StartRequest{Build: startBuild, UpdateConfigs: startUpdateConfigs}
		if len(args) > 0 {
			req.TunnelID = args[0]
		}
		d, client := newDispatcher()
		defer client.Close()
		_, err := d.Start(cmd.Context(), req)
		return err
	},
}

func init() {
	startCmd.Flags().SortFlags = false
	startCmd.Flags().BoolVar(&startBuild, "build", false, "Rebuild tunnel images before starting")
	startCmd.Flags().BoolVar(&startUpdateConfigs, "update-configs", false, "Regenerate tunnel configs before starting")
	startCmd.Example = `  tunnel-dashboard tunnel start 3
  tunnel-dashboard tunnel start 0-4 --build`

	tunnelCmd.AddCommand(startCmd)
}
