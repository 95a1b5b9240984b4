// Package health reports whether a running simulation is making progress.
// It serves liveness and readiness probes over HTTP.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-bumpmap/pkg/agent"
	"github.com/opd-ai/go-bumpmap/pkg/field"
	"github.com/opd-ai/go-bumpmap/pkg/logging"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusAlive     = "alive"
)

// readinessTimeout bounds one /ready request across all checks.
const readinessTimeout = 5 * time.Second

// HealthCheck is one named readiness condition.
type HealthCheck interface {
	Name() string
	Check(ctx context.Context) error
}

// Report is the aggregated readiness of the simulator.
type Report struct {
	Status    string            `json:"status"`
	CheckedAt time.Time         `json:"checked_at"`
	Checks    map[string]Result `json:"checks"`
}

// Result is the outcome of a single check.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Elapsed string `json:"elapsed"`
}

// HealthChecker runs the registered checks for the readiness endpoint.
type HealthChecker struct {
	mu     sync.RWMutex
	checks map[string]HealthCheck
}

// NewHealthChecker returns a checker with no checks; it reports healthy
// until one is added.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{checks: make(map[string]HealthCheck)}
}

// AddCheck registers check under its name, replacing any earlier check
// with that name.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck unregisters the named check.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// CheckHealth runs every check concurrently under ctx. The report is
// healthy only when all of them pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) Report {
	hc.mu.RLock()
	checks := make([]HealthCheck, 0, len(hc.checks))
	for _, check := range hc.checks {
		checks = append(checks, check)
	}
	hc.mu.RUnlock()

	results := make([]Result, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := check.Check(ctx)
			results[i] = Result{Status: StatusHealthy, Elapsed: time.Since(start).String()}
			if err != nil {
				results[i].Status = StatusUnhealthy
				results[i].Message = err.Error()
			}
		}()
	}
	wg.Wait()

	report := Report{
		Status:    StatusHealthy,
		CheckedAt: time.Now().UTC(),
		Checks:    make(map[string]Result, len(checks)),
	}
	for i, check := range checks {
		report.Checks[check.Name()] = results[i]
		if results[i].Status != StatusHealthy {
			report.Status = StatusUnhealthy
		}
	}
	return report
}

// LivenessHandler answers 200 while the process can serve HTTP at all.
func (hc *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": StatusAlive})
}

// ReadinessHandler answers 200 when every check passes and 503 otherwise,
// with the full report as the body.
func (hc *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	report := hc.CheckHealth(ctx)
	code := http.StatusOK
	if report.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// Handler routes /health to the liveness probe and /ready to the
// readiness probe.
func (hc *HealthChecker) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", hc.LivenessHandler)
	mux.HandleFunc("/ready", hc.ReadinessHandler)
	return mux
}

// Serve runs the probe endpoints on addr until ctx is cancelled.
func (hc *HealthChecker) Serve(ctx context.Context, addr string, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.Discard()
	}
	server := &http.Server{
		Addr:         addr,
		Handler:      hc.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Starting health check server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("health server shutdown: %w", err)
	}
	return <-errCh
}

// SimulationStatus is the part of a simulation the progress check reads.
type SimulationStatus interface {
	IsRunning() bool
	CurrentTick() uint64
	LastUpdate() time.Time
}

// SimulationHealthCheck fails when the simulation is stopped or has not
// completed a tick within stallAfter.
type SimulationHealthCheck struct {
	sim        SimulationStatus
	stallAfter time.Duration
	now        func() time.Time
}

// NewSimulationHealthCheck creates a progress check. A zero stallAfter only
// checks that the simulation is running.
func NewSimulationHealthCheck(sim SimulationStatus, stallAfter time.Duration) *SimulationHealthCheck {
	return &SimulationHealthCheck{
		sim:        sim,
		stallAfter: stallAfter,
		now:        time.Now,
	}
}

// Name returns the name of this health check.
func (s *SimulationHealthCheck) Name() string {
	return "simulation"
}

// Check verifies that the simulation is running and advancing.
func (s *SimulationHealthCheck) Check(ctx context.Context) error {
	if !s.sim.IsRunning() {
		return fmt.Errorf("simulation is not running")
	}
	if s.stallAfter <= 0 {
		return nil
	}
	last := s.sim.LastUpdate()
	if last.IsZero() {
		return nil
	}
	if idle := s.now().Sub(last); idle > s.stallAfter {
		return fmt.Errorf("no tick completed for %s (tick %d)", idle.Round(time.Millisecond), s.sim.CurrentTick())
	}
	return nil
}

// BeliefSource exposes the belief field under the simulation's lock.
type BeliefSource interface {
	View(fn func(truth *field.GroundTruth, belief *field.Belief, agents agent.Population))
}

// BeliefHealthCheck fails if any belief cell left [0, 1].
type BeliefHealthCheck struct {
	src BeliefSource
}

// NewBeliefHealthCheck creates a belief range check.
func NewBeliefHealthCheck(src BeliefSource) *BeliefHealthCheck {
	return &BeliefHealthCheck{src: src}
}

// Name returns the name of this health check.
func (b *BeliefHealthCheck) Name() string {
	return "belief"
}

// Check verifies every belief value is a probability.
func (b *BeliefHealthCheck) Check(ctx context.Context) error {
	ok := true
	b.src.View(func(_ *field.GroundTruth, belief *field.Belief, _ agent.Population) {
		ok = belief != nil && belief.InRange()
	})
	if !ok {
		return fmt.Errorf("belief field has values outside [0, 1]")
	}
	return nil
}

// StorageHealthCheck pings the checkpoint database.
type StorageHealthCheck struct {
	ping func(ctx context.Context) error
}

// NewStorageHealthCheck creates a database reachability check.
func NewStorageHealthCheck(ping func(ctx context.Context) error) *StorageHealthCheck {
	return &StorageHealthCheck{ping: ping}
}

// Name returns the name of this health check.
func (s *StorageHealthCheck) Name() string {
	return "storage"
}

// Check verifies that the database answers.
func (s *StorageHealthCheck) Check(ctx context.Context) error {
	if err := s.ping(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

// BreakerState reports a circuit breaker's current state.
type BreakerState interface {
	State() gobreaker.State
}

// CheckpointHealthCheck fails while the checkpoint circuit breaker is open.
type CheckpointHealthCheck struct {
	breaker BreakerState
}

// NewCheckpointHealthCheck creates a checkpoint breaker check.
func NewCheckpointHealthCheck(breaker BreakerState) *CheckpointHealthCheck {
	return &CheckpointHealthCheck{breaker: breaker}
}

// Name returns the name of this health check.
func (c *CheckpointHealthCheck) Name() string {
	return "checkpoint"
}

// Check verifies that checkpoints are being attempted.
func (c *CheckpointHealthCheck) Check(ctx context.Context) error {
	if state := c.breaker.State(); state == gobreaker.StateOpen {
		return fmt.Errorf("checkpoint circuit breaker is %s", state)
	}
	return nil
}

// MemoryHealthCheck fails when heap use passes a limit.
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck creates a health check for memory usage. A nil
// getMemoryUsage reads the Go heap.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	if getMemoryUsage == nil {
		getMemoryUsage = HeapMB
	}
	return &MemoryHealthCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

// Name returns the name of this health check.
func (m *MemoryHealthCheck) Name() string {
	return "memory"
}

// Check verifies that memory usage is within acceptable limits.
func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	currentMB := m.getMemoryUsage()
	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}

// HeapMB returns the allocated heap in megabytes.
func HeapMB() int64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return int64(ms.Alloc / 1024 / 1024)
}
