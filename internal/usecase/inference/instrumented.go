// Package inference wraps page extractors with run-level observability.
package inference

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pagex/internal/domain"
	"github.com/kailas-cloud/pagex/internal/domain/page"
	logpkg "github.com/kailas-cloud/pagex/internal/logger"
)

// InstrumentedExtractor wraps an Extractor with logging and run usage accounting.
// Transport metrics (requests, duration, tokens) are recorded in the transport packages.
type InstrumentedExtractor struct {
	inner    domain.Extractor
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedExtractor wraps an extractor with observability.
func NewInstrumentedExtractor(inner domain.Extractor, provider, model string, logger *zap.Logger) *InstrumentedExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedExtractor{inner: inner, provider: provider, model: model, logger: logger}
}

// Extract delegates to the inner extractor and records usage on the context collector.
func (p *InstrumentedExtractor) Extract(ctx context.Context, pg page.Encoded) (domain.InferenceResult, error) {
	log := logpkg.FromContextOr(ctx, p.logger)

	start := time.Now()

	result, err := p.inner.Extract(ctx, pg)

	duration := time.Since(start)

	if err != nil {
		log.Error("Inference request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Int("page", pg.Index()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.InferenceResult{}, fmt.Errorf("extract page %d: %w", pg.Index(), err)
	}

	domain.UsageFromContext(ctx).Add(result)

	log.Debug("Inference request completed",
		zap.String("request_id", result.RequestID),
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Int("page", pg.Index()),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
		zap.Int("response_bytes", len(result.Text)),
	)

	return result, nil
}

// HealthCheck delegates to the inner extractor when it supports health checks.
func (p *InstrumentedExtractor) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("inference health check: %w", err)
		}
	}
	return nil
}
