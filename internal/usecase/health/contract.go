package health

import "context"

// InferenceChecker checks inference provider availability.
type InferenceChecker interface {
	HealthCheck(ctx context.Context) error
}

// StorePinger checks result store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}
