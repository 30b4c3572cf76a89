package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tunnel-dashboard/internal/models"
	"tunnel-dashboard/internal/rpc"
)

type dispatchFixture struct {
	backend   *fakeBackend
	notifier  *recordingNotifier
	scheduler *fakeScheduler
	probes    int
	d         *Dispatcher
}

func newDispatchFixture(cmdErr error) *dispatchFixture {
	f := &dispatchFixture{
		backend:   newFakeBackend(),
		notifier:  &recordingNotifier{},
		scheduler: &fakeScheduler{},
	}
	f.backend.command = func(string, interface{}) error { return cmdErr }
	f.d = NewDispatcher(f.backend, f.notifier, f.scheduler, func() { f.probes++ }, time.Second)
	return f
}

func TestDispatcherSuccess(t *testing.T) {
	tests := []struct {
		name string
		run  func(d *Dispatcher) (*models.CommandResult, error)
		call string
		msg  string
		body interface{}
	}{
		{
			name: "start default",
			run: func(d *Dispatcher) (*models.CommandResult, error) {
				return d.Start(context.Background(), models.StartRequest{})
			},
			call: "start",
			msg:  "Started tunnel 0",
			body: models.StartRequest{TunnelID: "0"},
		},
		{
			name: "start range",
			run: func(d *Dispatcher) (*models.CommandResult, error) {
				return d.Start(context.Background(), models.StartRequest{TunnelID: "0-4", Build: true})
			},
			call: "start",
			msg:  "Started tunnel 0-4",
			body: models.StartRequest{TunnelID: "0-4", Build: true},
		},
		{
			name: "stop",
			run: func(d *Dispatcher) (*models.CommandResult, error) {
				return d.Stop(context.Background(), "3")
			},
			call: "stop",
			msg:  "Stopped tunnel 3",
			body: models.StopRequest{TunnelID: "3"},
		},
		{
			name: "stop all",
			run: func(d *Dispatcher) (*models.CommandResult, error) {
				return d.Stop(context.Background(), "all")
			},
			call: "stop",
			msg:  "Stopped tunnel all",
			body: models.StopRequest{TunnelID: "all"},
		},
		{
			name: "replace",
			run: func(d *Dispatcher) (*models.CommandResult, error) {
				return d.Replace(context.Background(), "1", " 5 ")
			},
			call: "replace",
			msg:  "Replaced tunnel 1 with 5",
			body: models.ReplaceRequest{StopTunnel: 1, StartTunnel: 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDispatchFixture(nil)
			res, err := tt.run(f.d)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Status != "success" || res.Message != tt.msg {
				t.Errorf("result = %+v, want success %q", res, tt.msg)
			}
			if f.backend.count(tt.call) != 1 {
				t.Errorf("%s called %d times, want 1", tt.call, f.backend.count(tt.call))
			}
			if f.backend.commands[0] != tt.body {
				t.Errorf("body = %+v, want %+v", f.backend.commands[0], tt.body)
			}
			notes := f.notifier.all()
			if len(notes) != 1 || notes[0].severity != models.SeveritySuccess || notes[0].message != tt.msg {
				t.Errorf("notifications = %+v", notes)
			}
			if len(f.scheduler.delays) != 1 || f.scheduler.delays[0] != time.Second {
				t.Errorf("scheduled probes = %v, want one after 1s", f.scheduler.delays)
			}
			f.scheduler.fire()
			if f.probes != 1 {
				t.Errorf("probes = %d, want 1", f.probes)
			}
		})
	}
}

func TestDispatcherFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"detail", &rpc.APIError{StatusCode: 404, Detail: "not found"}, "not found"},
		{"no detail", &rpc.APIError{StatusCode: 500}, "Failed to stop tunnel"},
		{"wrapped detail", errors.Join(errors.New("POST /stop"), &rpc.APIError{StatusCode: 400, Detail: "bad id"}), "bad id"},
		{"transport", errors.New("dial tcp: connection refused"), "Network error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDispatchFixture(tt.err)
			res, err := f.d.Stop(context.Background(), "3")
			if err == nil {
				t.Fatal("expected error")
			}
			if res == nil || res.Status != "error" || res.Message != tt.msg {
				t.Errorf("result = %+v, want error %q", res, tt.msg)
			}
			notes := f.notifier.all()
			if len(notes) != 1 || notes[0].severity != models.SeverityError || notes[0].message != tt.msg {
				t.Errorf("notifications = %+v", notes)
			}
			if len(f.scheduler.delays) != 0 {
				t.Errorf("probe scheduled after failure")
			}
		})
	}
}

func TestDispatcherFallbackMessages(t *testing.T) {
	f := newDispatchFixture(&rpc.APIError{StatusCode: 500})
	if res, _ := f.d.Start(context.Background(), models.StartRequest{TunnelID: "2"}); res.Message != "Failed to start tunnel" {
		t.Errorf("start message = %q", res.Message)
	}
	if res, _ := f.d.Replace(context.Background(), "1", "2"); res.Message != "Failed to replace tunnel" {
		t.Errorf("replace message = %q", res.Message)
	}
}

func TestDispatcherInputValidation(t *testing.T) {
	f := newDispatchFixture(nil)

	res, err := f.d.Stop(context.Background(), "  ")
	if !errors.Is(err, ErrMissingTunnelID) || res != nil {
		t.Errorf("stop empty: res=%v err=%v", res, err)
	}
	if len(f.notifier.all()) != 0 {
		t.Errorf("stop with empty id notified: %+v", f.notifier.all())
	}

	if _, err := f.d.Replace(context.Background(), "1", ""); !errors.Is(err, ErrMissingTunnelID) {
		t.Errorf("replace empty: err = %v", err)
	}
	if _, err := f.d.Replace(context.Background(), "one", "2"); !errors.Is(err, ErrInvalidTunnelID) {
		t.Errorf("replace non-integer: err = %v", err)
	}

	notes := f.notifier.all()
	if len(notes) != 2 || notes[0].message != "Please enter both tunnel IDs" || notes[1].severity != models.SeverityError {
		t.Errorf("notifications = %+v", notes)
	}
	if f.backend.count("stop")+f.backend.count("replace") != 0 {
		t.Error("invalid input reached the backend")
	}
	if len(f.scheduler.delays) != 0 {
		t.Error("probe scheduled for invalid input")
	}
}

/**
 * Stop against a real orchestrator API
 * @description
 * - 200 -> one success notification and one follow-up probe
 * - 404 {"detail":"not found"} -> one error notification carrying the detail, no probe
 */
func TestDispatcherAgainstOrchestrator(t *testing.T) {
	var code int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/stop" {
			http.NotFound(w, r)
			return
		}
		var req models.StopRequest
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if code == http.StatusOK {
			json.NewEncoder(w).Encode(map[string]string{"status": "stopped", "tunnel_id": req.TunnelID})
		} else {
			json.NewEncoder(w).Encode(models.DetailResponse{Detail: "not found"})
		}
	}))
	defer server.Close()

	cfg := rpc.DefaultHTTPConfig()
	cfg.BaseURL = server.URL
	client := rpc.NewHTTPClient(cfg)
	defer client.Close()

	for _, tc := range []struct {
		code     int
		severity models.Severity
		message  string
		probes   int
	}{
		{http.StatusOK, models.SeveritySuccess, "Stopped tunnel 3", 1},
		{http.StatusNotFound, models.SeverityError, "not found", 0},
	} {
		code = tc.code
		notifier := &recordingNotifier{}
		scheduler := &fakeScheduler{}
		d := NewDispatcher(NewTunnelBackend(client), notifier, scheduler, func() {}, time.Second)

		d.Stop(context.Background(), "3")
		notes := notifier.all()
		if len(notes) != 1 || notes[0].severity != tc.severity || notes[0].message != tc.message {
			t.Errorf("status %d: notifications = %+v", tc.code, notes)
		}
		if len(scheduler.delays) != tc.probes {
			t.Errorf("status %d: probes = %d, want %d", tc.code, len(scheduler.delays), tc.probes)
		}
	}
}
