package tunnel

import (
	"github.com/spf13/cobra"
)

var replaceCmd = &cobra.Command{
	Use:   "replace <stop_id> <start_id>",
	Short: "Stop one tunnel and start another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, client := newDispatcher()
		defer client.Close()
		_, err := d.Replace(cmd.Context(), args[0], args[1])
		return err
	},
}

func init() {
	replaceCmd.Example = `  tunnel-dashboard tunnel replace 1 5`
	tunnelCmd.AddCommand(replaceCmd)
}
