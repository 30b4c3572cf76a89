package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tunnel-dashboard/cmd/root"
	"tunnel-dashboard/controllers"
	"tunnel-dashboard/internal/config"
	"tunnel-dashboard/internal/logger"
	"tunnel-dashboard/internal/rpc"
	"tunnel-dashboard/services"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serverCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动仪表盘HTTP服务",
	Long:  `启动仪表盘：首次刷新隧道状态，之后按健康检查周期和状态周期分别轮询，并在HTTP与websocket上提供实时表格`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return startServer(ctx, &config.Config)
	},
}

/**
 * Run the dashboard until ctx is done
 * @param {context.Context} ctx - Cancelled on SIGINT/SIGTERM
 * @param {*config.AppConfig} cfg - Application configuration
 * @returns {error} Listen or shutdown error
 * @description
 * - Listens on the TCP address and, if configured, a unix socket
 * - Starts polling, metrics pushing and the HTTP servers in one errgroup
 * - On shutdown stops HTTP first, then tears the polling session down
 */
func startServer(ctx context.Context, cfg *config.AppConfig) error {
	addrs := []ListenAddr{{Network: "tcp", Address: cfg.Server.Address}}
	if cfg.Server.Socket != "" && IsUnixSocketSupported() {
		addrs = append(addrs, ListenAddr{Network: "unix", Address: cfg.Server.Socket})
	}
	listeners, err := CreateListeners(addrs)
	if len(listeners) == 0 {
		return fmt.Errorf("no listener available: %w", err)
	}

	client := rpc.NewHTTPClient(rpc.ConfigFromBackend(&cfg.Backend))
	srv := services.NewServer(cfg, client)
	router := controllers.NewRouter(srv, cfg)

	g, gctx := errgroup.WithContext(ctx)
	srv.Start(gctx)
	g.Go(func() error {
		services.StartReportMetrics(gctx, cfg.Metrics.Pushgateway, cfg.Metrics.PushInterval)
		return nil
	})

	httpServers := make([]*http.Server, 0, len(listeners))
	for _, ln := range listeners {
		ln := ln
		hs := &http.Server{Handler: router}
		httpServers = append(httpServers, hs)
		g.Go(func() error {
			if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", ln.Addr(), err)
			}
			return nil
		})
	}

	logger.Infof("Dashboard listening on %s", strings.Join(listenerAddrs(listeners), ", "))

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down dashboard")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs error
		for _, hs := range httpServers {
			errs = multierr.Append(errs, hs.Shutdown(shutdownCtx))
		}
		return multierr.Append(errs, srv.Stop())
	})

	return g.Wait()
}

func listenerAddrs(listeners []net.Listener) []string {
	out := make([]string, 0, len(listeners))
	for _, ln := range listeners {
		out = append(out, ln.Addr().Network()+"://"+ln.Addr().String())
	}
	return out
}

func init() {
	root.RootCmd.AddCommand(serverCmd)
	serverCmd.Example = `  # run with ./config.yaml or ~/.tunnel-dashboard/config.yaml
  tunnel-dashboard serve

  # point at a remote orchestrator
  tunnel-dashboard serve --backend http://10.0.0.5:8000 --address :9090`
}
