// Package health provides Kubernetes-style liveness and readiness probes
// for the API server.
//
// Each registered probe runs in its own background goroutine at a fixed
// interval. Probes use consecutive failure/success thresholds so a single
// slow database ping does not flip the pod out of rotation: a probe must
// fail defaultFailureThreshold times in a row before it reports unhealthy,
// and pass defaultSuccessThreshold times before it reports healthy again.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc is a health check function. It should return nil if the checked
// component is healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

const (
	defaultFailureThreshold = 3
	defaultSuccessThreshold = 1
)

// probe holds the configuration and runtime state for a single check.
//
// Concurrency model: exec() is called from exactly one goroutine (the
// ticker loop), so the consecutive counters need no synchronization. The
// healthy flag and lastErr are read by HTTP handlers from arbitrary
// goroutines and use atomics.
type probe struct {
	name    string
	timeout time.Duration
	check   CheckFunc

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	// counters are only touched from the single exec() goroutine.
	consecutiveFails int
	consecutiveOK    int
}

func (p *probe) isHealthy() bool {
	return p.healthy.Load()
}

// lastError returns the most recent error from this probe, or nil.
func (p *probe) lastError() error {
	if e := p.lastErr.Load(); e != nil {
		return *e
	}
	return nil
}

// exec runs the check once and updates the thresholds. Must be called from
// a single goroutine.
func (p *probe) exec(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.check(checkCtx)
	p.lastErr.Store(&err)

	if err != nil {
		p.consecutiveOK = 0
		p.consecutiveFails++
		if p.consecutiveFails >= defaultFailureThreshold {
			p.healthy.Store(false)
		}
	} else {
		p.consecutiveFails = 0
		p.consecutiveOK++
		if p.consecutiveOK >= defaultSuccessThreshold {
			p.healthy.Store(true)
		}
	}
}

// Health manages liveness and readiness probes for the service.
type Health struct {
	ready atomic.Bool

	// mu protects the probe slices and cancel. Registration happens before
	// Start; HTTP handlers snapshot the slices under RLock and release
	// immediately, so probe state is never read under the lock.
	mu          sync.RWMutex
	liveProbes  []*probe
	readyProbes []*probe
	cancel      context.CancelFunc
}

// New creates a Health instance. The service starts not ready; call
// SetReady(true) once initialization has finished.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a liveness probe. Liveness covers the process
// itself: goroutine counts, GC pauses, deadlocks.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveProbes = append(h.liveProbes, newProbe(name, timeout, check))
}

// AddReadinessCheck registers a readiness probe. Readiness covers the
// dependencies traffic needs: the postgres pool, the redis client.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readyProbes = append(h.readyProbes, newProbe(name, timeout, check))
}

func newProbe(name string, timeout time.Duration, check CheckFunc) *probe {
	p := &probe{
		name:    name,
		timeout: timeout,
		check:   check,
	}
	p.healthy.Store(true) // assume healthy until proven otherwise
	return p
}

// Start runs every registered probe in its own goroutine at the given
// interval. Call it once, after all probes are registered.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := make([]*probe, 0, len(h.liveProbes)+len(h.readyProbes))
	probes = append(probes, h.liveProbes...)
	probes = append(probes, h.readyProbes...)
	h.mu.Unlock()

	for _, p := range probes {
		go probeLoop(ctx, p, interval)
	}
}

func probeLoop(ctx context.Context, p *probe, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start.
	p.exec(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.exec(ctx)
		}
	}
}

// SetReady sets the manual readiness gate. It is flipped to true after
// startup and back to false at the start of graceful shutdown so the load
// balancer drains the pod before connections close.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the service can take traffic: the manual gate is
// open and every readiness probe is passing.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}

	h.mu.RLock()
	probes := h.readyProbes
	h.mu.RUnlock()

	for _, p := range probes {
		if !p.isHealthy() {
			return false
		}
	}
	return true
}

// Stop cancels all probe goroutines. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 with {"status":"ok"} while all liveness
// probes pass, 503 listing the failing probes otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	probes := make([]*probe, len(h.liveProbes))
	copy(probes, h.liveProbes)
	h.mu.RUnlock()

	writeStatus(w, failingProbes(probes))
}

// ReadyEndpoint serves /readyz: 200 only when the manual gate is open and
// every readiness probe passes.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	ready := h.ready.Load()

	h.mu.RLock()
	probes := make([]*probe, len(h.readyProbes))
	copy(probes, h.readyProbes)
	h.mu.RUnlock()

	failures := failingProbes(probes)
	if !ready {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

// failingProbes maps probe name to error message for every unhealthy probe,
// using the stored last error rather than re-running the check.
func failingProbes(probes []*probe) map[string]string {
	failures := make(map[string]string)
	for _, p := range probes {
		if !p.isHealthy() {
			if err := p.lastError(); err != nil {
				failures[p.name] = err.Error()
			} else {
				failures[p.name] = "check is unhealthy"
			}
		}
	}
	return failures
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{Status: "ok"}
	status := http.StatusOK

	if len(failures) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failures
		status = http.StatusServiceUnavailable
	}

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
