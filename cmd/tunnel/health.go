package tunnel

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"tunnel-dashboard/internal/models"
	"tunnel-dashboard/internal/utils"

	"github.com/iancoleman/orderedmap"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show tunnel health reported by the orchestrator",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showHealth(cmd.Context(), os.Stdout)
	},
}

type Health_Columns struct {
	ID      int    `json:"id"`
	Tunnel  string `json:"tunnel"`
	Healthy bool   `json:"healthy"`
	Status  string `json:"status"`
}

func showHealth(ctx context.Context, w io.Writer) error {
	backend, client := newBackend()
	defer client.Close()

	resp, err := backend.Health(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch tunnel health: %w", err)
	}
	if len(resp.Tunnels) == 0 {
		fmt.Fprintln(w, "No tunnels")
		return nil
	}

	entries := append([]models.HealthEntry(nil), resp.Tunnels...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].TunnelID < entries[j].TunnelID })

	var dataList []*orderedmap.OrderedMap
	for _, e := range entries {
		recordMap, _ := utils.StructToOrderedMap(Health_Columns{
			ID:      e.TunnelID,
			Tunnel:  e.Tunnel,
			Healthy: e.IsHealthy,
			Status:  string(models.StateFromHealth(e.IsHealthy)),
		})
		dataList = append(dataList, recordMap)
	}
	utils.RenderTable(w, dataList)
	return nil
}

func init() {
	tunnelCmd.AddCommand(healthCmd)
}
