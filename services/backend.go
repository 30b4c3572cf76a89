package services

import (
	"context"
	"fmt"
	"net/http"

	"tunnel-dashboard/internal/models"
	"tunnel-dashboard/internal/rpc"
)

// Backend is the tunnel orchestrator as seen by the dashboard
type Backend interface {
	Status(ctx context.Context, tunnelIDs ...int) (*models.StatusResponse, error)
	Health(ctx context.Context) (*models.HealthResponse, error)
	Start(ctx context.Context, req models.StartRequest) (*models.CommandResponse, error)
	Stop(ctx context.Context, req models.StopRequest) (*models.CommandResponse, error)
	Replace(ctx context.Context, req models.ReplaceRequest) (*models.CommandResponse, error)
}

// TunnelBackend implements Backend over the orchestrator's HTTP API
type TunnelBackend struct {
	client rpc.HTTPClient
}

func NewTunnelBackend(client rpc.HTTPClient) *TunnelBackend {
	return &TunnelBackend{client: client}
}

/**
 * Fetch the full tunnel inventory
 * @param {context.Context} ctx - Request context
 * @param {...int} tunnelIDs - Optional filter, empty returns every tunnel
 * @returns {*models.StatusResponse} Decoded GET /status body
 * @returns {error} Transport error, *rpc.APIError or decode error
 */
func (b *TunnelBackend) Status(ctx context.Context, tunnelIDs ...int) (*models.StatusResponse, error) {
	var params map[string]interface{}
	if len(tunnelIDs) > 0 {
		params = map[string]interface{}{"tunnel_ids": tunnelIDs}
	}
	resp, err := b.client.Get(ctx, "/status", params)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	var out models.StatusResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health fetches GET /health
func (b *TunnelBackend) Health(ctx context.Context) (*models.HealthResponse, error) {
	resp, err := b.client.Get(ctx, "/health", nil)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	var out models.HealthResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *TunnelBackend) Start(ctx context.Context, req models.StartRequest) (*models.CommandResponse, error) {
	return b.command(ctx, "/start", req)
}

func (b *TunnelBackend) Stop(ctx context.Context, req models.StopRequest) (*models.CommandResponse, error) {
	return b.command(ctx, "/stop", req)
}

func (b *TunnelBackend) Replace(ctx context.Context, req models.ReplaceRequest) (*models.CommandResponse, error) {
	return b.command(ctx, "/replace", req)
}

// command posts a control request. Any 2xx is success even when the body is
// empty or not the expected shape.
func (b *TunnelBackend) command(ctx context.Context, path string, body interface{}) (*models.CommandResponse, error) {
	resp, err := rpc.Call(ctx, b.client, http.MethodPost, path, body)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	var out models.CommandResponse
	if len(resp.Body) > 0 {
		_ = resp.Decode(&out)
	}
	return &out, nil
}
