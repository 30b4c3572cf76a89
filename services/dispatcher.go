package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tunnel-dashboard/internal/logger"
	"tunnel-dashboard/internal/models"
	"tunnel-dashboard/internal/rpc"
)

var (
	ErrMissingTunnelID = errors.New("missing tunnel id")
	ErrInvalidTunnelID = errors.New("invalid tunnel id")
)

const (
	msgNetworkError  = "Network error"
	msgMissingBothID = "Please enter both tunnel IDs"
)

// Dispatcher sends tunnel commands and reports each outcome exactly once.
type Dispatcher struct {
	backend    Backend
	notifier   Notifier
	scheduler  Scheduler
	probe      func()
	probeDelay time.Duration
}

/**
 * Create command dispatcher
 * @param {Backend} backend - Tunnel orchestrator
 * @param {Notifier} notifier - Receives one notification per command
 * @param {Scheduler} scheduler - Runs the follow-up probe
 * @param {func()} probe - Follow-up probe, run once after each successful command
 * @param {time.Duration} probeDelay - Delay before the follow-up probe
 */
func NewDispatcher(backend Backend, notifier Notifier, scheduler Scheduler, probe func(), probeDelay time.Duration) *Dispatcher {
	return &Dispatcher{
		backend:    backend,
		notifier:   notifier,
		scheduler:  scheduler,
		probe:      probe,
		probeDelay: probeDelay,
	}
}

/**
 * Start tunnels
 * @param {context.Context} ctx - Request context
 * @param {models.StartRequest} req - Tunnel id, a range like "0-4", or empty for "0"
 * @returns {*models.CommandResult} Outcome as shown to the operator
 * @returns {error} Transport error or *rpc.APIError
 */
func (d *Dispatcher) Start(ctx context.Context, req models.StartRequest) (*models.CommandResult, error) {
	req.TunnelID = strings.TrimSpace(req.TunnelID)
	if req.TunnelID == "" {
		req.TunnelID = "0"
	}
	_, err := d.backend.Start(ctx, req)
	return d.finish("start", fmt.Sprintf("Started tunnel %s", req.TunnelID), "Failed to start tunnel", err)
}

/**
 * Stop tunnels
 * @param {context.Context} ctx - Request context
 * @param {string} tunnelID - Tunnel id or "all"
 * @returns {*models.CommandResult} Outcome as shown to the operator, nil for a missing id
 * @returns {error} ErrMissingTunnelID, transport error or *rpc.APIError
 * @description
 * - An empty id sends nothing and notifies nothing
 */
func (d *Dispatcher) Stop(ctx context.Context, tunnelID string) (*models.CommandResult, error) {
	tunnelID = strings.TrimSpace(tunnelID)
	if tunnelID == "" {
		return nil, ErrMissingTunnelID
	}
	_, err := d.backend.Stop(ctx, models.StopRequest{TunnelID: tunnelID})
	return d.finish("stop", fmt.Sprintf("Stopped tunnel %s", tunnelID), "Failed to stop tunnel", err)
}

/**
 * Stop one tunnel and start another in its place
 * @param {context.Context} ctx - Request context
 * @param {string} stopID - Tunnel to stop
 * @param {string} startID - Tunnel to start
 * @returns {*models.CommandResult} Outcome as shown to the operator
 * @returns {error} ErrMissingTunnelID, ErrInvalidTunnelID, transport error or *rpc.APIError
 */
func (d *Dispatcher) Replace(ctx context.Context, stopID, startID string) (*models.CommandResult, error) {
	stopID, startID = strings.TrimSpace(stopID), strings.TrimSpace(startID)
	if stopID == "" || startID == "" {
		d.notifier.Notify("Error", msgMissingBothID, models.SeverityError)
		return errorResult(msgMissingBothID), ErrMissingTunnelID
	}
	stop, errStop := strconv.Atoi(stopID)
	start, errStart := strconv.Atoi(startID)
	if errStop != nil || errStart != nil {
		msg := fmt.Sprintf("Invalid tunnel IDs: %s, %s", stopID, startID)
		d.notifier.Notify("Error", msg, models.SeverityError)
		return errorResult(msg), ErrInvalidTunnelID
	}

	_, err := d.backend.Replace(ctx, models.ReplaceRequest{StopTunnel: stop, StartTunnel: start})
	return d.finish("replace", fmt.Sprintf("Replaced tunnel %d with %d", stop, start), "Failed to replace tunnel", err)
}

// finish turns a command outcome into one notification and, on success, one follow-up probe.
func (d *Dispatcher) finish(command, okMsg, fallback string, err error) (*models.CommandResult, error) {
	observeCommand(command, err)
	if err == nil {
		logger.Infof("Command %s succeeded: %s", command, okMsg)
		d.notifier.Notify("Success", okMsg, models.SeveritySuccess)
		if d.probe != nil {
			d.scheduler.AfterFunc(d.probeDelay, d.probe)
		}
		return &models.CommandResult{Status: "success", Message: okMsg}, nil
	}

	msg := failureMessage(err, fallback)
	logger.Errorf("Command %s failed: %v", command, err)
	d.notifier.Notify("Error", msg, models.SeverityError)
	return errorResult(msg), err
}

// failureMessage prefers the backend detail, then the command fallback. Anything
// that never reached the backend is a network error.
func failureMessage(err error, fallback string) string {
	var apiErr *rpc.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return fallback
	}
	return msgNetworkError
}

func errorResult(msg string) *models.CommandResult {
	return &models.CommandResult{Status: "error", Message: msg}
}
