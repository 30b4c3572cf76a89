package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tunnel-dashboard/internal/logger"
	"tunnel-dashboard/internal/models"
)

var (
	ErrRefreshInFlight = errors.New("status refresh already in flight")
	ErrProbeSuppressed = errors.New("health probe suppressed by status refresh")
)

// PollerConfig holds the two independent cadences
type PollerConfig struct {
	HealthInterval time.Duration
	StatusInterval time.Duration
}

// Poller keeps the table store in line with the backend through two
// reconciliation paths: full snapshots and status-only health probes.
type Poller struct {
	backend  Backend
	store    *TableStore
	notifier Notifier
	guard    Guard
	cfg      PollerConfig
	now      func() time.Time

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

/**
 * Create poller
 * @param {Backend} backend - Tunnel orchestrator
 * @param {*TableStore} store - Live table both paths write to
 * @param {Notifier} notifier - Receives snapshot failure notifications
 * @param {PollerConfig} cfg - Health and status periods
 */
func NewPoller(backend Backend, store *TableStore, notifier Notifier, cfg PollerConfig) *Poller {
	return &Poller{
		backend:  backend,
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
		ctx:      context.Background(),
	}
}

// Guard exposes the snapshot guard for inspection.
func (p *Poller) Guard() *Guard {
	return &p.guard
}

// Context is the session context; it is cancelled by Stop.
func (p *Poller) Context() context.Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctx
}

/**
 * Fetch the full inventory and rebuild the table
 * @param {context.Context} ctx - Request context
 * @returns {error} ErrRefreshInFlight, a wrapped backend error, ErrViewClosed or nil
 * @description
 * - Holds the guard for the whole fetch and rebuild, released on every exit path
 * - On failure the table is left untouched and the operator is notified
 */
func (p *Poller) RefreshStatus(ctx context.Context) error {
	if !p.guard.TryAcquire() {
		observePoll("status", "rejected", time.Time{})
		return ErrRefreshInFlight
	}
	defer p.guard.Release()

	started := time.Now()
	resp, err := p.backend.Status(ctx)
	if err != nil {
		observePoll("status", "error", started)
		logger.Errorf("Refresh status failed: %v", err)
		p.notifier.Notify("Error", "Failed to refresh status", models.SeverityError)
		return fmt.Errorf("refresh status: %w", err)
	}

	gen, err := p.store.ReplaceAll(resp, p.now())
	if err != nil {
		observePoll("status", "dropped", started)
		logger.Debugf("Snapshot dropped: %v", err)
		return err
	}
	observePoll("status", "ok", started)
	tableRows.Set(float64(len(resp.Tunnels)))
	tableMemory.Set(resp.TotalMemoryMB)
	logger.Debugf("Snapshot %d applied: %d tunnels, %.2f MB", gen, len(resp.Tunnels), resp.TotalMemoryMB)
	return nil
}

/**
 * Fetch health and patch the status column
 * @param {context.Context} ctx - Request context
 * @returns {error} ErrProbeSuppressed, ErrStaleProbe, ErrViewClosed, a wrapped backend error or nil
 * @description
 * - No-op while a refresh holds the guard: nothing is fetched, nothing queued
 * - Failures are logged only, never notified
 */
func (p *Poller) UpdateHealthStatus(ctx context.Context) error {
	if p.guard.Held() {
		observePoll("health", "suppressed", time.Time{})
		return ErrProbeSuppressed
	}
	generation := p.store.Generation()

	started := time.Now()
	resp, err := p.backend.Health(ctx)
	if err != nil {
		observePoll("health", "error", started)
		logger.Warnf("Health probe failed: %v", err)
		return fmt.Errorf("health probe: %w", err)
	}

	health := make(map[int]bool, len(resp.Tunnels))
	for _, t := range resp.Tunnels {
		health[t.TunnelID] = t.IsHealthy
	}

	n, err := p.store.PatchHealth(health, generation, &p.guard, p.now())
	if err != nil {
		observePoll("health", "stale", started)
		logger.Debugf("Health patch dropped: %v", err)
		return err
	}
	observePoll("health", "ok", started)
	logger.Debugf("Health probe patched %d rows", n)
	return nil
}

/**
 * Start the initial snapshot and both periodic tasks
 * @param {context.Context} ctx - Parent of the session context
 * @description
 * - Renders one snapshot first, then the two tickers run with independent phase
 * - Calling Start on a running poller does nothing
 */
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.ctx, p.cancel = context.WithCancel(ctx)
	session := p.ctx

	p.wg.Add(2)
	go func() {
		defer p.wg.Done()
		if err := p.RefreshStatus(session); err != nil {
			logger.Debugf("Initial snapshot: %v", err)
		}
		p.loop(session, p.cfg.StatusInterval, p.RefreshStatus)
	}()
	go func() {
		defer p.wg.Done()
		p.loop(session, p.cfg.HealthInterval, p.UpdateHealthStatus)
	}()
	logger.Infof("Polling started: health every %v, status every %v", p.cfg.HealthInterval, p.cfg.StatusInterval)
}

func (p *Poller) loop(ctx context.Context, interval time.Duration, tick func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// errors are already logged and counted by tick
			_ = tick(ctx)
		}
	}
}

// Stop cancels both periodic tasks and waits for them to return. In-flight
// requests finish on their own; their results are dropped by the closed view.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	p.mu.Unlock()

	cancel()
	p.wg.Wait()
	logger.Info("Polling stopped")
}
