package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned when a checker name is registered twice.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// DefaultCheckTimeout bounds a single readiness check.
const DefaultCheckTimeout = 2 * time.Second

// HealthChecker gates readiness: the upstream client's circuit breaker, the
// sync queue and the session manager implement it.
type HealthChecker interface {
	Name() string

	// Check returns nil when the component can serve traffic.
	Check(ctx context.Context) error
}

// CheckFunc adapts a function into a HealthChecker.
type CheckFunc struct {
	CheckName string
	Fn        func(ctx context.Context) error
}

func (c CheckFunc) Name() string { return c.CheckName }

func (c CheckFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// HealthRegistry aggregates the readiness checks.
type HealthRegistry interface {
	Register(checker HealthChecker) error

	// CheckAll runs every check concurrently under ctx.
	CheckAll(ctx context.Context) *HealthResult
}

type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult is the body of /-/ready.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry runs checks in registration order, each under its
// own timeout. A panicking check reports unhealthy.
type DefaultHealthRegistry struct {
	// Timeout bounds each check. Zero means DefaultCheckTimeout.
	Timeout time.Duration

	mu       sync.RWMutex
	checkers []HealthChecker
	names    map[string]struct{}
}

func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{names: make(map[string]struct{})}
}

// Register adds a checker. Names must be unique.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	name := checker.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.names[name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
	}

	r.names[name] = struct{}{}
	r.checkers = append(r.checkers, checker)

	return nil
}

// CheckAll runs the registered checks concurrently. One failure makes the
// whole result unhealthy.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := append([]HealthChecker(nil), r.checkers...)
	r.mu.RUnlock()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}

	results := make([]*CheckResult, len(checkers))

	var wg sync.WaitGroup
	for i, checker := range checkers {
		wg.Go(func() { results[i] = runCheck(ctx, checker, timeout) })
	}

	wg.Wait()

	out := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}

	for i, checker := range checkers {
		out.Checks[checker.Name()] = results[i]
		if results[i].Status != HealthStatusHealthy {
			out.Status = HealthStatusUnhealthy
		}
	}

	return out
}

func runCheck(ctx context.Context, checker HealthChecker, timeout time.Duration) (res *CheckResult) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			res = &CheckResult{Status: HealthStatusUnhealthy, Message: fmt.Sprintf("panic: %v", p)}
		}

		res.Duration = time.Since(start)
	}()

	if err := checker.Check(ctx); err != nil {
		return &CheckResult{Status: HealthStatusUnhealthy, Message: err.Error()}
	}

	return &CheckResult{Status: HealthStatusHealthy}
}
