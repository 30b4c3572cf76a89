package tunnel

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"tunnel-dashboard/internal/models"
	"tunnel-dashboard/internal/render"
	"tunnel-dashboard/internal/utils"
	"tunnel-dashboard/services"

	"github.com/iancoleman/orderedmap"
	"github.com/spf13/cobra"
)

var listIDs []int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tunnels reported by the orchestrator",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTunnels(cmd.Context(), os.Stdout)
	},
}

/**
 * Fetch one snapshot and print it
 * @param {context.Context} ctx - Request context
 * @param {io.Writer} w - Output
 * @returns {error} Backend error
 */
func listTunnels(ctx context.Context, w io.Writer) error {
	backend, client := newBackend()
	defer client.Close()

	resp, err := backend.Status(ctx, listIDs...)
	if err != nil {
		return fmt.Errorf("failed to fetch tunnel status: %w", err)
	}
	printRows(w, services.RowsFromSnapshot(resp), resp.TotalMemoryMB)
	return nil
}

/**
 *	Fields displayed in list format
 */
type Tunnel_Columns struct {
	ID         string `json:"id"`
	Tunnel     string `json:"tunnel"`
	Port       string `json:"port"`
	Status     string `json:"status"`
	TimeAlive  string `json:"time_alive"`
	Entrypoint string `json:"entrypoint"`
	Exitpoint  string `json:"exitpoint"`
	Memory     string `json:"memory"`
}

func printRows(w io.Writer, rows []models.TunnelRow, totalMemoryMB float64) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No tunnels")
		fmt.Fprintf(w, "Total memory: %s\n", render.TotalMemory(totalMemoryMB))
		return
	}

	var dataList []*orderedmap.OrderedMap
	for _, r := range rows {
		row := Tunnel_Columns{
			Tunnel:     r.Name,
			Port:       r.Port,
			Status:     string(r.Status),
			TimeAlive:  r.TimeAlive,
			Entrypoint: joinEndpoint(r.Entrypoint, r.EntrypointIP),
			Exitpoint:  joinEndpoint(r.Exitpoint, r.ExitpointIP),
			Memory:     r.Memory,
		}
		if r.HasID {
			row.ID = strconv.Itoa(r.TunnelID)
		}
		recordMap, _ := utils.StructToOrderedMap(row)
		dataList = append(dataList, recordMap)
	}
	utils.RenderTable(w, dataList)
	fmt.Fprintf(w, "Total memory: %s\n", render.TotalMemory(totalMemoryMB))
}

func joinEndpoint(name, ip string) string {
	if ip == "" {
		return name
	}
	return name + " (" + ip + ")"
}

func init() {
	listCmd.Flags().SortFlags = false
	listCmd.Flags().IntSliceVarP(&listIDs, "id", "i", nil, "Only show these tunnel ids")
	tunnelCmd.AddCommand(listCmd)
}
