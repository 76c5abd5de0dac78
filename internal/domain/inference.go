package domain

import (
	"context"

	"github.com/kailas-cloud/pagex/internal/domain/page"
)

// Extractor is the shared page inference contract between layers.
type Extractor interface {
	Extract(ctx context.Context, p page.Encoded) (InferenceResult, error)
}

// HealthChecker verifies inference provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// InferenceResult carries the raw model text and token usage through the decorator chain.
type InferenceResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	RequestID        string
}

// TotalTokens returns prompt plus completion tokens.
func (r InferenceResult) TotalTokens() int { return r.PromptTokens + r.CompletionTokens }
