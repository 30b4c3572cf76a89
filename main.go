package main

import (
	"os"

	_ "tunnel-dashboard/cmd"
	"tunnel-dashboard/cmd/root"
	"tunnel-dashboard/internal/config"
	"tunnel-dashboard/internal/env"
	"tunnel-dashboard/internal/logger"
)

func main() {
	// 检查是否是服务器模式
	env.ServerMode = len(os.Args) > 1 && os.Args[1] == "serve"

	// 配置文件加载前先用默认配置初始化日志
	logger.InitLoggerWithMode(&config.Config.Log, env.ServerMode)
	defer logger.Sync()

	if err := root.RootCmd.Execute(); err != nil {
		logger.Sync()
		os.Exit(1)
	}
}
