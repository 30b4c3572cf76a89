package cmd

import (
	_ "tunnel-dashboard/cmd/metrics"
	_ "tunnel-dashboard/cmd/misc"
	_ "tunnel-dashboard/cmd/root"
	_ "tunnel-dashboard/cmd/server"
	_ "tunnel-dashboard/cmd/tunnel"
)
