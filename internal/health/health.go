package health

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
)

// Status represents the health state of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
	// StatusDisabled marks an optional component that is not configured.
	// It does not affect the overall status.
	StatusDisabled Status = "disabled"
)

// Component names registered by the server.
const (
	ComponentHTTP    = "http"
	ComponentAdvisor = "advisor"
	ComponentCache   = "cache"
)

// Checker tracks the health of registered components.
type Checker struct {
	mu         sync.RWMutex
	components map[string]Status
}

// NewChecker creates a Checker with no registered components.
func NewChecker() *Checker {
	return &Checker{
		components: make(map[string]Status),
	}
}

// Register adds a component with an initial status of down.
func (c *Checker) Register(name string) {
	c.SetStatus(name, StatusDown)
}

// SetStatus updates the health status of a named component.
func (c *Checker) SetStatus(name string, status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.components[name] = status
}

// Components returns registered component names in sorted order.
func (c *Checker) Components() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.components))
	for name := range c.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type response struct {
	Status     Status            `json:"status"`
	Components map[string]Status `json:"components"`
}

// ServeHTTP responds with the aggregated health status.
// Returns 503 when any component is down. Degraded and disabled components
// still answer 200; degraded is reported in the body status.
func (c *Checker) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	c.mu.RLock()
	overall := StatusUp
	comps := make(map[string]Status, len(c.components))
	for name, status := range c.components {
		comps[name] = status
		switch status {
		case StatusDown:
			overall = StatusDown
		case StatusDegraded:
			if overall == StatusUp {
				overall = StatusDegraded
			}
		}
	}
	c.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if overall == StatusDown {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(response{
		Status:     overall,
		Components: comps,
	})
}

// ReadinessChecker tracks whether the system is ready to serve traffic.
type ReadinessChecker struct {
	mu    sync.RWMutex
	ready bool
}

// NewReadinessChecker creates a ReadinessChecker in not-ready state.
func NewReadinessChecker() *ReadinessChecker {
	return &ReadinessChecker{}
}

// SetReady updates the readiness state.
func (r *ReadinessChecker) SetReady(ready bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready = ready
}

// ServeHTTP responds with readiness status.
// Returns 200 when ready, 503 when not ready.
func (r *ReadinessChecker) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	r.mu.RLock()
	ready := r.ready
	r.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ready": ready})
}
