package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Check names.
const (
	CheckInference = "inference"
	CheckStore     = "store"
)

// DefaultTimeout bounds each individual check.
const DefaultTimeout = 5 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Errors map[string]string
}

// Service coordinates health checks.
type Service struct {
	inference InferenceChecker
	store     StorePinger
	timeout   time.Duration
}

// New creates a Service. store can be nil when the result store is disabled.
func New(inference InferenceChecker, store StorePinger) *Service {
	return &Service{inference: inference, store: store, timeout: DefaultTimeout}
}

// WithTimeout configures the per-check timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: map[string]CheckResult{}, Errors: map[string]string{}}

	s.run(ctx, &r, CheckInference, s.inference.HealthCheck)
	if s.store != nil {
		s.run(ctx, &r, CheckStore, s.store.Ping)
	}

	return r
}

func (s *Service) run(ctx context.Context, r *Report, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		r.Checks[name] = CheckError
		r.Errors[name] = err.Error()
		r.Status = Degraded
		return
	}
	r.Checks[name] = CheckOK
}
