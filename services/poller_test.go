package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tunnel-dashboard/internal/models"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func newTestPoller(b Backend, n Notifier) (*Poller, *TableStore) {
	store := NewTableStore()
	return NewPoller(b, store, n, PollerConfig{HealthInterval: time.Hour, StatusInterval: time.Hour}), store
}

/**
 * A label-only row is joined with the health map by its derived id
 * @description
 * - Snapshot shows LLUSTR[0] UP without a tunnel_id
 * - Health reports tunnel 0 unhealthy, the row must turn DOWN
 */
func TestLabelOnlyRowJoinsHealth(t *testing.T) {
	b := newFakeBackend()
	b.status = okStatus(&models.StatusResponse{Tunnels: []models.TunnelStatus{{Tunnel: "LLUSTR[0]", Status: "up"}}})
	b.health = okHealth(models.HealthEntry{TunnelID: 0, IsHealthy: false})
	p, store := newTestPoller(b, &recordingNotifier{})

	if err := p.RefreshStatus(context.Background()); err != nil {
		t.Fatalf("RefreshStatus: %v", err)
	}
	if s := store.Snapshot().Rows[0].Status; s != models.StateUp {
		t.Fatalf("after snapshot status = %s, want UP", s)
	}
	if err := p.UpdateHealthStatus(context.Background()); err != nil {
		t.Fatalf("UpdateHealthStatus: %v", err)
	}
	if s := store.Snapshot().Rows[0].Status; s != models.StateDown {
		t.Errorf("after probe status = %s, want DOWN", s)
	}
}

/**
 * Probe during a slow snapshot
 * @description
 * - While the snapshot is in flight a probe fetches nothing and changes nothing
 * - A second refresh is rejected
 * - Once the snapshot lands the table holds exactly its rows and the guard is free
 */
func TestProbeSuppressedDuringSnapshot(t *testing.T) {
	release := make(chan struct{})
	b := newFakeBackend()
	b.status = func(ctx context.Context) (*models.StatusResponse, error) {
		<-release
		return &models.StatusResponse{TotalMemoryMB: 3, Tunnels: []models.TunnelStatus{
			tunnel(1, "LLUSTR[1]", "up"), tunnel(2, "LLUSTR[2]", "down"),
		}}, nil
	}
	b.health = okHealth()
	p, store := newTestPoller(b, &recordingNotifier{})

	done := make(chan error, 1)
	go func() { done <- p.RefreshStatus(context.Background()) }()
	waitFor(t, "guard", p.Guard().Held)

	if err := p.UpdateHealthStatus(context.Background()); !errors.Is(err, ErrProbeSuppressed) {
		t.Errorf("probe err = %v, want ErrProbeSuppressed", err)
	}
	if n := b.count("health"); n != 0 {
		t.Errorf("health fetched %d times while guard held", n)
	}
	if err := p.RefreshStatus(context.Background()); !errors.Is(err, ErrRefreshInFlight) {
		t.Errorf("second refresh err = %v, want ErrRefreshInFlight", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("RefreshStatus: %v", err)
	}
	if p.Guard().Held() {
		t.Error("guard still held after snapshot")
	}
	view := store.Snapshot()
	if len(view.Rows) != 2 || view.Rows[0].TunnelID != 1 || view.Rows[1].TunnelID != 2 {
		t.Errorf("rows = %+v, want tunnels 1 and 2", view.Rows)
	}
	if b.count("status") != 1 {
		t.Errorf("status fetched %d times, want 1", b.count("status"))
	}
}

func TestRefreshFailureKeepsTable(t *testing.T) {
	fail := false
	b := newFakeBackend()
	b.status = func(ctx context.Context) (*models.StatusResponse, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return &models.StatusResponse{TotalMemoryMB: 1, Tunnels: []models.TunnelStatus{tunnel(0, "a", "up")}}, nil
	}
	n := &recordingNotifier{}
	p, store := newTestPoller(b, n)

	if err := p.RefreshStatus(context.Background()); err != nil {
		t.Fatalf("RefreshStatus: %v", err)
	}
	fail = true
	if err := p.RefreshStatus(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if p.Guard().Held() {
		t.Error("guard still held after failed snapshot")
	}
	view := store.Snapshot()
	if len(view.Rows) != 1 || view.Generation != 1 {
		t.Errorf("table changed by failed snapshot: %+v", view)
	}

	notes := n.all()
	if len(notes) != 1 || notes[0].title != "Error" || notes[0].message != "Failed to refresh status" || notes[0].severity != models.SeverityError {
		t.Errorf("notifications = %+v", notes)
	}
}

func TestProbeFailureIsSilent(t *testing.T) {
	b := newFakeBackend()
	b.status = okStatus(&models.StatusResponse{Tunnels: []models.TunnelStatus{tunnel(0, "a", "up")}})
	b.health = func(ctx context.Context) (*models.HealthResponse, error) {
		return nil, errors.New("timeout")
	}
	n := &recordingNotifier{}
	p, store := newTestPoller(b, n)
	p.RefreshStatus(context.Background())

	if err := p.UpdateHealthStatus(context.Background()); err == nil {
		t.Fatal("expected probe error")
	}
	if len(n.all()) != 0 {
		t.Errorf("probe failure notified: %+v", n.all())
	}
	if s := store.Snapshot().Rows[0].Status; s != models.StateUp {
		t.Errorf("status = %s, want UP", s)
	}
}

/**
 * A probe that started before a snapshot and returns after it is dropped
 */
func TestProbeOlderThanSnapshotIsDropped(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	b := newFakeBackend()
	b.status = okStatus(&models.StatusResponse{Tunnels: []models.TunnelStatus{tunnel(0, "a", "up")}})
	b.health = func(ctx context.Context) (*models.HealthResponse, error) {
		close(entered)
		<-release
		return &models.HealthResponse{}, nil
	}
	p, store := newTestPoller(b, &recordingNotifier{})
	p.RefreshStatus(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.UpdateHealthStatus(context.Background()) }()
	<-entered

	if err := p.RefreshStatus(context.Background()); err != nil {
		t.Fatalf("RefreshStatus: %v", err)
	}
	close(release)
	if err := <-done; !errors.Is(err, ErrStaleProbe) {
		t.Errorf("probe err = %v, want ErrStaleProbe", err)
	}
	row := store.Snapshot().Rows[0]
	if row.Status != models.StateUp || row.StatusSource != models.SourceSnapshot {
		t.Errorf("stale probe patched row: %+v", row)
	}
}

func TestProbeAfterCloseIsDropped(t *testing.T) {
	b := newFakeBackend()
	b.status = okStatus(&models.StatusResponse{Tunnels: []models.TunnelStatus{tunnel(0, "a", "up")}})
	b.health = okHealth()
	p, store := newTestPoller(b, &recordingNotifier{})
	p.RefreshStatus(context.Background())
	store.Close()

	if err := p.UpdateHealthStatus(context.Background()); !errors.Is(err, ErrViewClosed) {
		t.Errorf("probe err = %v, want ErrViewClosed", err)
	}
	if err := p.RefreshStatus(context.Background()); !errors.Is(err, ErrViewClosed) {
		t.Errorf("refresh err = %v, want ErrViewClosed", err)
	}
}

func TestPollerStartStop(t *testing.T) {
	b := newFakeBackend()
	b.status = okStatus(&models.StatusResponse{Tunnels: []models.TunnelStatus{tunnel(0, "a", "up")}})
	b.health = okHealth(models.HealthEntry{TunnelID: 0, IsHealthy: true})
	store := NewTableStore()
	p := NewPoller(b, store, &recordingNotifier{}, PollerConfig{
		HealthInterval: 5 * time.Millisecond,
		StatusInterval: 20 * time.Millisecond,
	})

	p.Start(context.Background())
	p.Start(context.Background())
	waitFor(t, "initial snapshot", func() bool { return store.Generation() >= 1 })
	waitFor(t, "health probes", func() bool { return b.count("health") >= 2 })
	waitFor(t, "periodic snapshot", func() bool { return b.count("status") >= 2 })
	p.Stop()

	if p.Context().Err() == nil {
		t.Error("session context not cancelled")
	}
	status, health := b.count("status"), b.count("health")
	time.Sleep(30 * time.Millisecond)
	if b.count("status") != status || b.count("health") != health {
		t.Error("tickers still running after Stop")
	}
	p.Stop()
}

func TestConcurrentRefreshSingleWriter(t *testing.T) {
	release := make(chan struct{})
	b := newFakeBackend()
	b.status = func(ctx context.Context) (*models.StatusResponse, error) {
		<-release
		return &models.StatusResponse{}, nil
	}
	p, _ := newTestPoller(b, &recordingNotifier{})

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		rejected int
	)
	go p.RefreshStatus(context.Background())
	waitFor(t, "guard", p.Guard().Held)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if errors.Is(p.RefreshStatus(context.Background()), ErrRefreshInFlight) {
				mu.Lock()
				rejected++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(release)

	if rejected != 8 {
		t.Errorf("rejected = %d, want 8", rejected)
	}
	if b.count("status") != 1 {
		t.Errorf("status fetched %d times, want 1", b.count("status"))
	}
}
