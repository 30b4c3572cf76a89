package services

import (
	"context"
	"sync"
	"time"

	"tunnel-dashboard/internal/models"
)

// fakeBackend answers from per-endpoint functions and counts calls
type fakeBackend struct {
	mu       sync.Mutex
	calls    map[string]int
	status   func(ctx context.Context) (*models.StatusResponse, error)
	health   func(ctx context.Context) (*models.HealthResponse, error)
	command  func(path string, body interface{}) error
	commands []interface{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: make(map[string]int)}
}

func (b *fakeBackend) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

func (b *fakeBackend) record(name string, body interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[name]++
	if body != nil {
		b.commands = append(b.commands, body)
	}
}

func (b *fakeBackend) Status(ctx context.Context, tunnelIDs ...int) (*models.StatusResponse, error) {
	b.record("status", nil)
	return b.status(ctx)
}

func (b *fakeBackend) Health(ctx context.Context) (*models.HealthResponse, error) {
	b.record("health", nil)
	return b.health(ctx)
}

func (b *fakeBackend) Start(ctx context.Context, req models.StartRequest) (*models.CommandResponse, error) {
	b.record("start", req)
	return &models.CommandResponse{Status: "started"}, b.command("/start", req)
}

func (b *fakeBackend) Stop(ctx context.Context, req models.StopRequest) (*models.CommandResponse, error) {
	b.record("stop", req)
	return &models.CommandResponse{Status: "stopped"}, b.command("/stop", req)
}

func (b *fakeBackend) Replace(ctx context.Context, req models.ReplaceRequest) (*models.CommandResponse, error) {
	b.record("replace", req)
	return &models.CommandResponse{Status: "replaced"}, b.command("/replace", req)
}

type note struct {
	title    string
	message  string
	severity models.Severity
}

// recordingNotifier keeps every notification
type recordingNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (n *recordingNotifier) Notify(title, message string, severity models.Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note{title, message, severity})
}

func (n *recordingNotifier) all() []note {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]note(nil), n.notes...)
}

// fakeScheduler collects scheduled funcs instead of running them
type fakeScheduler struct {
	mu     sync.Mutex
	delays []time.Duration
	funcs  []func()
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	s.funcs = append(s.funcs, f)
}

func (s *fakeScheduler) fire() {
	s.mu.Lock()
	funcs := s.funcs
	s.funcs = nil
	s.mu.Unlock()
	for _, f := range funcs {
		f()
	}
}

func intPtr(v int) *int {
	return &v
}

func tunnel(id int, name, status string) models.TunnelStatus {
	return models.TunnelStatus{
		TunnelID:     intPtr(id),
		Tunnel:       name,
		Port:         "8001",
		Status:       status,
		TimeAlive:    "1h",
		Entrypoint:   "entry",
		EntrypointIP: "10.0.0.1",
		Exitpoint:    "exit",
		ExitpointIP:  "10.0.0.2",
		Memory:       "12.5 MB",
	}
}

func okStatus(resp *models.StatusResponse) func(context.Context) (*models.StatusResponse, error) {
	return func(context.Context) (*models.StatusResponse, error) { return resp, nil }
}

func okHealth(entries ...models.HealthEntry) func(context.Context) (*models.HealthResponse, error) {
	return func(context.Context) (*models.HealthResponse, error) {
		return &models.HealthResponse{Tunnels: entries}, nil
	}
}
