// Package batch runs the extraction pipeline over an ordered list of documents.
package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	dombatch "github.com/kailas-cloud/pagex/internal/domain/batch"
	"github.com/kailas-cloud/pagex/internal/domain/document"
	logpkg "github.com/kailas-cloud/pagex/internal/logger"
	"github.com/kailas-cloud/pagex/internal/metrics"
)

// Policy decides what happens when a document fails.
type Policy string

// Failure policies.
const (
	// PolicyFailFast stops at the first failing document.
	PolicyFailFast Policy = "fail_fast"
	// PolicySkip records the failure and moves on.
	PolicySkip Policy = "skip"
)

// ParsePolicy validates a policy name. Empty selects fail_fast.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyFailFast, nil
	case PolicyFailFast, PolicySkip:
		return p, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (want fail_fast or skip)", s)
	}
}

// DocumentError identifies the document that aborted a fail-fast run.
type DocumentError struct {
	Index int
	Name  string
	Err   error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// Service runs documents sequentially in input order.
type Service struct {
	extract DocumentExtractor
	sinks   []Sink
	policy  Policy
	logger  *zap.Logger
}

// New creates a batch driver with the fail_fast policy.
func New(extract DocumentExtractor, sinks ...Sink) *Service {
	return &Service{
		extract: extract,
		sinks:   sinks,
		policy:  PolicyFailFast,
		logger:  zap.NewNop(),
	}
}

// WithPolicy configures the failure policy.
func (s *Service) WithPolicy(p Policy) *Service {
	if p != "" {
		s.policy = p
	}
	return s
}

// WithLogger configures the fallback logger.
func (s *Service) WithLogger(logger *zap.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Policy returns the configured failure policy.
func (s *Service) Policy() Policy { return s.policy }

// Run extracts every document in order.
//
// Under fail_fast the first failure stops the run: the returned result holds the
// documents before it and the error is a *DocumentError. Under skip failures are
// recorded as outcomes and the error is nil. Cancellation is checked between
// documents; the partial result is returned with the context error.
func (s *Service) Run(ctx context.Context, docs []document.Document) (*dombatch.Result, error) {
	log := logpkg.FromContextOr(ctx, s.logger)
	result := &dombatch.Result{}
	start := time.Now()

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			log.Warn("Batch interrupted", zap.Int("processed", i), zap.Int("total", len(docs)))
			return result, fmt.Errorf("batch interrupted before document %d: %w", i, err)
		}

		log.Info("Processing document",
			zap.Int("index", i),
			zap.Int("total", len(docs)),
			zap.String("document", doc.Name()),
		)

		err := s.process(ctx, i, doc, result)
		if err == nil {
			metrics.DocumentsProcessedTotal.WithLabelValues(string(dombatch.StatusOK)).Inc()
			continue
		}

		if s.policy == PolicySkip {
			metrics.DocumentsProcessedTotal.WithLabelValues(string(dombatch.StatusSkipped)).Inc()
			result.Record(dombatch.NewSkipped(i, doc.Name(), err))
			log.Warn("Document failed, skipping",
				zap.Int("index", i),
				zap.String("document", doc.Name()),
				zap.Error(err),
			)
			continue
		}

		metrics.DocumentsProcessedTotal.WithLabelValues(string(dombatch.StatusFailed)).Inc()
		result.Record(dombatch.NewFailed(i, doc.Name(), err))
		log.Error("Document failed, stopping batch",
			zap.Int("index", i),
			zap.String("document", doc.Name()),
			zap.Error(err),
		)
		return result, &DocumentError{Index: i, Name: doc.Name(), Err: err}
	}

	log.Info("Batch finished",
		zap.Int("documents", result.Len()),
		zap.Int("failures", len(result.Failures())),
		zap.Int("pages", result.Pages()),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// process extracts one document, hands it to the sinks and appends it on success.
func (s *Service) process(ctx context.Context, i int, doc document.Document, result *dombatch.Result) error {
	res, err := s.extract.Extract(ctx, doc)
	if err != nil {
		return err
	}
	for _, sink := range s.sinks {
		if err := sink.Save(ctx, i, res); err != nil {
			return fmt.Errorf("save %q: %w", doc.Name(), err)
		}
	}
	result.Append(i, res)
	return nil
}
