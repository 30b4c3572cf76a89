package root

import (
	"tunnel-dashboard/internal/config"
	"tunnel-dashboard/internal/env"
	"tunnel-dashboard/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	backendURL string
	listenAddr string
)

var RootCmd = &cobra.Command{
	Use:   "tunnel-dashboard",
	Short: "隧道状态仪表盘",
	Long:  `tunnel-dashboard轮询隧道编排服务，维护实时隧道表格，并转发启动、停止、替换命令`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(cfgFile); err != nil {
			return err
		}
		cfg := &config.Config
		if backendURL != "" {
			cfg.Backend.BaseURL = backendURL
		}
		if listenAddr != "" {
			cfg.Server.Address = listenAddr
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger.InitLoggerWithMode(&cfg.Log, env.ServerMode)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default ./config.yaml or ~/.tunnel-dashboard/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Tunnel orchestrator base URL")
	RootCmd.PersistentFlags().StringVar(&listenAddr, "address", "", "Dashboard listening address")
}
