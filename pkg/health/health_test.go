package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

// staticCheck always returns err.
type staticCheck struct {
	name string
	err  error
}

func (c staticCheck) Name() string                    { return c.name }
func (c staticCheck) Check(ctx context.Context) error { return c.err }

// gateCheck blocks until every gateCheck sharing its WaitGroup has started.
type gateCheck struct {
	name    string
	started *sync.WaitGroup
}

func (c gateCheck) Name() string { return c.name }
func (c gateCheck) Check(ctx context.Context) error {
	c.started.Done()
	done := make(chan struct{})
	go func() { c.started.Wait(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestHealthChecker_AddAndRemoveCheck(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck(staticCheck{name: "belief", err: fmt.Errorf("cell out of range")})
	hc.AddCheck(staticCheck{name: "belief"})

	report := hc.CheckHealth(context.Background())
	if len(report.Checks) != 1 || report.Status != StatusHealthy {
		t.Errorf("replacement not applied: %+v", report)
	}

	hc.RemoveCheck("belief")
	if report := hc.CheckHealth(context.Background()); len(report.Checks) != 0 {
		t.Errorf("Expected 0 checks after removal, got %d", len(report.Checks))
	}
}

func TestHealthChecker_ReportsFailures(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck(staticCheck{name: "simulation"})
	hc.AddCheck(staticCheck{name: "storage", err: fmt.Errorf("database is closed")})

	report := hc.CheckHealth(context.Background())
	if report.Status != StatusUnhealthy {
		t.Errorf("Expected unhealthy report, got %s", report.Status)
	}
	if got := report.Checks["simulation"]; got.Status != StatusHealthy || got.Message != "" {
		t.Errorf("simulation result = %+v", got)
	}
	if got := report.Checks["storage"]; got.Status != StatusUnhealthy || got.Message != "database is closed" {
		t.Errorf("storage result = %+v", got)
	}
	if report.CheckedAt.IsZero() {
		t.Error("report has no timestamp")
	}
}

func TestHealthChecker_RunsChecksConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(3)
	hc := NewHealthChecker()
	for _, name := range []string{"simulation", "belief", "storage"} {
		hc.AddCheck(gateCheck{name: name, started: &started})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if report := hc.CheckHealth(ctx); report.Status != StatusHealthy {
		t.Errorf("checks did not overlap: %+v", report.Checks)
	}
}

func TestHealthChecker_Handler_Routes(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck(staticCheck{name: "simulation", err: fmt.Errorf("simulation is not running")})
	handler := hc.Handler()

	tests := []struct {
		path       string
		statusCode int
		status     string
	}{
		{"/health", http.StatusOK, "alive"},
		{"/ready", http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))

			if w.Code != tt.statusCode {
				t.Errorf("Expected status code %d, got %d", tt.statusCode, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", ct)
			}
			var body struct {
				Status string            `json:"status"`
				Checks map[string]Result `json:"checks"`
			}
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body.Status != tt.status {
				t.Errorf("Expected status %s, got %s", tt.status, body.Status)
			}
			if tt.path == "/ready" && body.Checks["simulation"].Message != "simulation is not running" {
				t.Errorf("Unexpected check message: %+v", body.Checks["simulation"])
			}
		})
	}
}

func TestHealthChecker_Serve_StopsOnCancel(t *testing.T) {
	hc := NewHealthChecker()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hc.Serve(ctx, "127.0.0.1:0", nil) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop after cancel")
	}
}

type fakeStatus struct {
	running bool
	tick    uint64
	last    time.Time
}

func (f fakeStatus) IsRunning() bool       { return f.running }
func (f fakeStatus) CurrentTick() uint64   { return f.tick }
func (f fakeStatus) LastUpdate() time.Time { return f.last }

func TestSimulationHealthCheck(t *testing.T) {
	now := time.Unix(5000, 0)
	tests := []struct {
		name        string
		status      fakeStatus
		stallAfter  time.Duration
		expectError bool
	}{
		{"stopped", fakeStatus{running: false}, 0, true},
		{"running without stall limit", fakeStatus{running: true, last: now.Add(-time.Hour)}, 0, false},
		{"running before first tick", fakeStatus{running: true}, time.Second, false},
		{"ticking", fakeStatus{running: true, tick: 9, last: now.Add(-500 * time.Millisecond)}, time.Second, false},
		{"stalled", fakeStatus{running: true, tick: 9, last: now.Add(-3 * time.Second)}, time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewSimulationHealthCheck(tt.status, tt.stallAfter)
			check.now = func() time.Time { return now }

			if check.Name() != "simulation" {
				t.Errorf("Expected name 'simulation', got %s", check.Name())
			}
			err := check.Check(context.Background())
			if tt.expectError != (err != nil) {
				t.Errorf("expectError=%v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestStorageHealthCheck(t *testing.T) {
	ok := NewStorageHealthCheck(func(context.Context) error { return nil })
	if err := ok.Check(context.Background()); err != nil {
		t.Errorf("Expected healthy storage, got %v", err)
	}

	down := NewStorageHealthCheck(func(context.Context) error { return fmt.Errorf("database is closed") })
	if err := down.Check(context.Background()); err == nil {
		t.Error("Expected error for unreachable storage")
	}
	if down.Name() != "storage" {
		t.Errorf("Expected name 'storage', got %s", down.Name())
	}
}

type fakeBreaker gobreaker.State

func (f fakeBreaker) State() gobreaker.State { return gobreaker.State(f) }

func TestCheckpointHealthCheck(t *testing.T) {
	tests := []struct {
		state       gobreaker.State
		expectError bool
	}{
		{gobreaker.StateClosed, false},
		{gobreaker.StateHalfOpen, false},
		{gobreaker.StateOpen, true},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			err := NewCheckpointHealthCheck(fakeBreaker(tt.state)).Check(context.Background())
			if tt.expectError != (err != nil) {
				t.Errorf("expectError=%v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestMemoryHealthCheck(t *testing.T) {
	tests := []struct {
		name         string
		maxMemoryMB  int64
		currentMemMB int64
		expectError  bool
	}{
		{"memory usage within limit", 100, 50, false},
		{"memory usage at limit", 100, 100, false},
		{"memory usage exceeds limit", 100, 150, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewMemoryHealthCheck(tt.maxMemoryMB, func() int64 {
				return tt.currentMemMB
			})
			if check.Name() != "memory" {
				t.Errorf("Expected name 'memory', got %s", check.Name())
			}
			err := check.Check(context.Background())
			if tt.expectError != (err != nil) {
				t.Errorf("expectError=%v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestMemoryHealthCheck_DefaultsToHeap(t *testing.T) {
	check := NewMemoryHealthCheck(1<<20, nil)
	if err := check.Check(context.Background()); err != nil {
		t.Errorf("Heap should be below 1TB: %v", err)
	}
}
