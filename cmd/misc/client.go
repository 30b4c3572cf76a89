package misc

import (
	"strings"

	"tunnel-dashboard/internal/config"
	"tunnel-dashboard/internal/rpc"
)

/**
 * Create a client of the running dashboard
 * @param {*config.ServerConfig} cfg - [server] section of the dashboard config
 * @returns {rpc.HTTPClient} Client over the unix socket when one is configured, TCP otherwise
 */
func dashboardClient(cfg *config.ServerConfig) rpc.HTTPClient {
	c := rpc.DefaultHTTPConfig()
	if cfg.Socket != "" {
		c.Network = "unix"
		c.Address = cfg.Socket
		c.BaseURL = "http://dashboard"
		return rpc.NewHTTPClient(c)
	}
	addr := cfg.Address
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	c.BaseURL = "http://" + addr
	return rpc.NewHTTPClient(c)
}
