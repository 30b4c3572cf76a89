package services

import (
	"context"
	"sync"
	"time"

	"tunnel-dashboard/internal/config"
	"tunnel-dashboard/internal/env"
	"tunnel-dashboard/internal/logger"
	"tunnel-dashboard/internal/models"
	"tunnel-dashboard/internal/rpc"

	"go.uber.org/multierr"
)

// Server ties the polling engine, the command dispatcher and the notification
// center to one backend client for the lifetime of a dashboard session.
type Server struct {
	cfg       *config.AppConfig
	client    rpc.HTTPClient
	backend   Backend
	store     *TableStore
	notifier  *NotificationCenter
	poller    *Poller
	scheduler *TimerScheduler
	dispatch  *Dispatcher
	startTime time.Time

	stopOnce sync.Once
}

/**
 * Create new dashboard server
 * @param {config.AppConfig} cfg - Application configuration
 * @param {rpc.HTTPClient} client - Client of the tunnel orchestrator, owned by the server
 * @returns {Server} Returns new server instance
 * @description
 * - Builds the table store, notification center, poller and dispatcher
 * - The follow-up probe of each command runs in the poller session
 */
func NewServer(cfg *config.AppConfig, client rpc.HTTPClient) *Server {
	s := &Server{
		cfg:       cfg,
		client:    client,
		backend:   NewTunnelBackend(client),
		store:     NewTableStore(),
		scheduler: NewTimerScheduler(),
		startTime: time.Now(),
	}
	s.notifier = NewNotificationCenter(cfg.Notifications.TTL, s.store)
	s.poller = NewPoller(s.backend, s.store, s.notifier, PollerConfig{
		HealthInterval: cfg.Polling.HealthInterval,
		StatusInterval: cfg.Polling.StatusInterval,
	})
	s.dispatch = NewDispatcher(s.backend, s.notifier, s.scheduler, s.followUpProbe, cfg.Polling.ProbeDelay)
	return s
}

func (s *Server) followUpProbe() {
	if err := s.poller.UpdateHealthStatus(s.poller.Context()); err != nil {
		logger.Debugf("Follow-up probe: %v", err)
	}
}

func (s *Server) Store() *TableStore {
	return s.store
}

func (s *Server) Notifier() *NotificationCenter {
	return s.notifier
}

func (s *Server) Poller() *Poller {
	return s.poller
}

func (s *Server) Dispatcher() *Dispatcher {
	return s.dispatch
}

// Start renders the first snapshot and starts both cadences.
func (s *Server) Start(ctx context.Context) {
	s.poller.Start(ctx)
}

/**
 * Tear the session down
 * @returns {error} Combined close errors
 * @description
 * - Stops both tickers and every pending follow-up probe
 * - Closes the view, late responses are dropped from then on
 * - Safe to call more than once
 */
func (s *Server) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		s.poller.Stop()
		s.scheduler.StopAll()
		s.notifier.Close()
		s.store.Close()
		err = multierr.Append(err, s.client.Close())
		logger.Info("Dashboard session stopped")
	})
	return err
}

/**
* Get dashboard health
* @returns {DashboardHealth} Returns health information with key metrics
* @description
* - Reports uptime, request counters and the state of the live table
* - Used by the /healthz endpoint
 */
func (s *Server) GetHealthz() models.DashboardHealth {
	view := s.store.Snapshot()
	health := models.DashboardHealth{
		Version:   env.Version,
		StartTime: s.startTime.Format(time.RFC3339),
		Status:    "UP",
		Uptime:    time.Since(s.startTime).String(),
		Metrics: models.Metrics{
			TotalRequests:  GetTotalRequestCount(),
			ErrorRequests:  GetTotalErrorCount(),
			Rows:           len(view.Rows),
			Generation:     view.Generation,
			LastRefresh:    formatTime(view.RefreshedAt),
			LastProbe:      formatTime(view.ProbedAt),
			RefreshRunning: s.poller.Guard().Held(),
		},
	}
	return health
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
