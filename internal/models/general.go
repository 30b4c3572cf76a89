package models

// ErrorResponse defines the dashboard API error format
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// CommandResult defines the dashboard API success format for tunnel commands
type CommandResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StartTunnelRequest is the dashboard body of POST /api/v1/tunnels/start
type StartTunnelRequest struct {
	TunnelID      FlexString `json:"tunnel_id"`
	Build         bool       `json:"build"`
	UpdateConfigs bool       `json:"update_configs"`
}

// StopTunnelRequest is the dashboard body of POST /api/v1/tunnels/stop
type StopTunnelRequest struct {
	TunnelID FlexString `json:"tunnel_id"`
}

// ReplaceTunnelRequest is the dashboard body of POST /api/v1/tunnels/replace.
// Ids arrive as typed by the operator and are validated by the dispatcher.
type ReplaceTunnelRequest struct {
	StopTunnel  FlexString `json:"stop_tunnel"`
	StartTunnel FlexString `json:"start_tunnel"`
}
