package models

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// FlexString accepts a JSON string or number. The orchestrator reports ports as
// "8001" or "N/A" while other builds emit plain numbers.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = FlexString(num.String())
	return nil
}

// TunnelStatus is one entry of GET /status
type TunnelStatus struct {
	TunnelID     *int       `json:"tunnel_id,omitempty"`
	Tunnel       string     `json:"tunnel"`
	Port         FlexString `json:"port"`
	Status       string     `json:"status"`
	TimeAlive    string     `json:"time_alive"`
	Entrypoint   string     `json:"entrypoint"`
	EntrypointIP string     `json:"entrypoint_ip"`
	Exitpoint    string     `json:"exitpoint"`
	ExitpointIP  string     `json:"exitpoint_ip"`
	Memory       string     `json:"memory"`
}

// StatusResponse is the body of GET /status
type StatusResponse struct {
	TotalMemoryMB float64        `json:"total_memory_mb"`
	Tunnels       []TunnelStatus `json:"tunnels"`
	Count         int            `json:"count"`
}

// HealthEntry is one entry of GET /health
type HealthEntry struct {
	TunnelID  int        `json:"tunnel_id"`
	IsHealthy bool       `json:"is_healthy"`
	Tunnel    string     `json:"tunnel,omitempty"`
	Port      FlexString `json:"port,omitempty"`
	Status    string     `json:"status,omitempty"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Tunnels []HealthEntry `json:"tunnels"`
}

// StartRequest is the body of POST /start. TunnelID may be a number or a range like "0-4".
type StartRequest struct {
	TunnelID      string `json:"tunnel_id"`
	Build         bool   `json:"build,omitempty"`
	UpdateConfigs bool   `json:"update_configs,omitempty"`
}

// StopRequest is the body of POST /stop. TunnelID may be a number or "all".
type StopRequest struct {
	TunnelID string `json:"tunnel_id"`
}

// ReplaceRequest is the body of POST /replace
type ReplaceRequest struct {
	StopTunnel  int `json:"stop_tunnel"`
	StartTunnel int `json:"start_tunnel"`
}

// CommandResponse is the success body of the orchestrator command endpoints
type CommandResponse struct {
	Status        string     `json:"status"`
	TunnelID      FlexString `json:"tunnel_id,omitempty"`
	Output        string     `json:"output,omitempty"`
	StoppedTunnel int        `json:"stopped_tunnel,omitempty"`
	StartedTunnel int        `json:"started_tunnel,omitempty"`
	StopOutput    string     `json:"stop_output,omitempty"`
	StartOutput   string     `json:"start_output,omitempty"`
}

// DetailResponse is the orchestrator error body
type DetailResponse struct {
	Detail string `json:"detail"`
}

var (
	labelPattern = regexp.MustCompile(`LLUSTR\[(\d+)\]`)
	digitPattern = regexp.MustCompile(`(\d+)`)
)

/**
 * Derive a tunnel id from its display label
 * @param {string} label - Display name such as "LLUSTR[3]"
 * @returns {int} Tunnel id
 * @returns {bool} False if the label carries no digits
 * @description
 * - Tries the structured LLUSTR[n] form first
 * - Falls back to the first embedded digit sequence
 */
func TunnelIDFromLabel(label string) (int, bool) {
	label = strings.TrimSpace(label)
	m := labelPattern.FindStringSubmatch(label)
	if m == nil {
		m = digitPattern.FindStringSubmatch(label)
	}
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// ResolveID returns the explicit tunnel_id or, when the backend omitted it, the id
// embedded in the display name.
func (t *TunnelStatus) ResolveID() (int, bool) {
	if t.TunnelID != nil {
		return *t.TunnelID, true
	}
	return TunnelIDFromLabel(t.Tunnel)
}
