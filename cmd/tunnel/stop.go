package tunnel

import (
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop <tunnel_id|all>",
	Short: "Stop a tunnel, or all tunnels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, client := newDispatcher()
		defer client.Close()
		_, err := d.Stop(cmd.Context(), args[0])
		return err
	},
}

func init() {
	stopCmd.Example = `  tunnel-dashboard tunnel stop 3
  tunnel-dashboard tunnel stop all`
	tunnelCmd.AddCommand(stopCmd)
}
