// Package health provides Kubernetes-style liveness and readiness probes.
//
// Registered checks run periodically on a single scheduler goroutine. Checks
// use failure/success thresholds to avoid flapping: a check must fail
// consecutively failureThreshold times before being marked unhealthy, and
// succeed successThreshold times before being marked healthy again.
package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// CheckFunc is a health check function. It returns nil when the checked
// component is healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

type checkKind int

const (
	liveness checkKind = iota
	readiness
)

// check holds the configuration and runtime state for one registered check.
//
// runOnce is only called from the scheduler goroutine, so the threshold
// counters need no synchronization. healthy and lastErr are read by probe
// handlers from arbitrary goroutines and use atomics.
type check struct {
	name             string
	kind             checkKind
	timeout          time.Duration
	fn               CheckFunc
	failureThreshold int
	successThreshold int

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	consecutiveFails int
	consecutiveOK    int
}

func (c *check) runOnce(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(checkCtx)
	c.lastErr.Store(&err)

	if err != nil {
		c.consecutiveOK = 0
		c.consecutiveFails++
		if c.consecutiveFails >= c.failureThreshold {
			c.healthy.Store(false)
		}
		return
	}

	c.consecutiveFails = 0
	c.consecutiveOK++
	if c.consecutiveOK >= c.successThreshold {
		c.healthy.Store(true)
	}
}

func (c *check) failure() (string, bool) {
	if c.healthy.Load() {
		return "", false
	}
	if p := c.lastErr.Load(); p != nil && *p != nil {
		return (*p).Error(), true
	}
	return "check is unhealthy", true
}

// Health manages liveness and readiness checks for a service.
type Health struct {
	ready atomic.Bool

	// mu protects checks and cancel. Registration happens before Start;
	// probe handlers snapshot the slice under RLock.
	mu     sync.RWMutex
	checks []*check
	cancel context.CancelFunc
}

// New creates a Health instance. The service starts not ready; call
// SetReady(true) once initialization completes.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a liveness check: is the process alive and
// functioning. Example: goroutine count.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.add(name, liveness, timeout, fn)
}

// AddReadinessCheck registers a readiness check: can the service take
// traffic. Example: database connectivity.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.add(name, readiness, timeout, fn)
}

func (h *Health) add(name string, kind checkKind, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &check{
		name:             name,
		kind:             kind,
		timeout:          timeout,
		fn:               fn,
		failureThreshold: 3,
		successThreshold: 1,
	}
	c.healthy.Store(true) // assume healthy until proven otherwise
	h.checks = append(h.checks, c)
}

// Start runs every registered check once immediately, then again at the given
// interval, all on one scheduler goroutine, until Stop or ctx cancellation.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	checks := make([]*check, len(h.checks))
	copy(checks, h.checks)
	h.mu.Unlock()

	go func() {
		runAll := func() {
			for _, c := range checks {
				c.runOnce(ctx)
			}
		}
		runAll()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runAll()
			}
		}
	}()
}

// Stop cancels the scheduler goroutine. Safe to call multiple times.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady sets the manual readiness gate. Typically called with true after
// initialization and with false at the start of graceful shutdown.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the service has been marked ready AND all
// readiness checks pass.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}
	return len(h.failures(readiness)) == 0
}

func (h *Health) failures(kind checkKind) map[string]string {
	h.mu.RLock()
	checks := make([]*check, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	out := make(map[string]string)
	for _, c := range checks {
		if c.kind != kind {
			continue
		}
		if msg, failed := c.failure(); failed {
			out[c.name] = msg
		}
	}
	return out
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint is the echo handler for /livez: 200 when all liveness checks
// pass, 503 with per-check failures otherwise.
func (h *Health) LiveEndpoint(c echo.Context) error {
	return respond(c, h.failures(liveness))
}

// ReadyEndpoint is the echo handler for /readyz: 200 when the service is
// marked ready and all readiness checks pass, 503 with details otherwise.
func (h *Health) ReadyEndpoint(c echo.Context) error {
	failures := h.failures(readiness)
	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	return respond(c, failures)
}

func respond(c echo.Context, failures map[string]string) error {
	if len(failures) > 0 {
		return c.JSON(http.StatusServiceUnavailable, statusResponse{
			Status: "unhealthy",
			Checks: failures,
		})
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}
