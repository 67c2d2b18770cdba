package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Checker is a function that checks the health of a dependency.
type Checker func(ctx context.Context) error

// Status represents the health status of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Response is the aggregated result of all registered checks.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Names returns the check names in sorted order.
func (r Response) Names() []string {
	names := make([]string, 0, len(r.Checks))
	for name := range r.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckResult is the result of a single health check.
type CheckResult struct {
	Status   Status        `json:"status"`
	Critical bool          `json:"critical"`
	Latency  time.Duration `json:"latency"`
	Error    string        `json:"error,omitempty"`
}

type registration struct {
	checker  Checker
	critical bool
}

// Registry holds named dependency checks. A failing critical check makes the
// overall status down; a failing non-critical one makes it degraded.
type Registry struct {
	mu      sync.RWMutex
	checks  map[string]registration
	timeout time.Duration
}

// NewRegistry creates a registry whose Check bounds every run by timeout.
// A zero timeout means 5 seconds.
func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Registry{
		checks:  make(map[string]registration),
		timeout: timeout,
	}
}

// Register adds a critical checker.
func (r *Registry) Register(name string, checker Checker) {
	r.RegisterCritical(name, checker)
}

// RegisterCritical adds a checker whose failure marks the whole client down.
func (r *Registry) RegisterCritical(name string, checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[name] = registration{checker: checker, critical: true}
}

// RegisterNonCritical adds a checker whose failure only degrades the client.
func (r *Registry) RegisterNonCritical(name string, checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[name] = registration{checker: checker, critical: false}
}

// Check runs every registered checker concurrently and aggregates the result.
func (r *Registry) Check(ctx context.Context) Response {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.mu.RLock()
	checks := make(map[string]registration, len(r.checks))
	for k, v := range r.checks {
		checks[k] = v
	}
	r.mu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]CheckResult, len(checks))
	)
	for name, reg := range checks {
		wg.Add(1)
		go func(name string, reg registration) {
			defer wg.Done()
			start := time.Now()
			err := reg.checker(ctx)
			res := CheckResult{Status: StatusUp, Critical: reg.critical, Latency: time.Since(start)}
			if err != nil {
				res.Status = StatusDown
				res.Error = err.Error()
			}
			mu.Lock()
			results[name] = res
			mu.Unlock()
		}(name, reg)
	}
	wg.Wait()

	overall := StatusUp
	for _, res := range results {
		if res.Status != StatusDown {
			continue
		}
		if res.Critical {
			overall = StatusDown
			break
		}
		overall = StatusDegraded
	}

	return Response{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Checks:    results,
	}
}
