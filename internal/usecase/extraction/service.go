// Package extraction drives per-page extraction across one document.
package extraction

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pagex/internal/domain"
	"github.com/kailas-cloud/pagex/internal/domain/document"
	domext "github.com/kailas-cloud/pagex/internal/domain/extraction"
	logpkg "github.com/kailas-cloud/pagex/internal/logger"
	"github.com/kailas-cloud/pagex/internal/metrics"
)

// Service extracts a DocumentResult from one document, page by page.
type Service struct {
	render      Renderer
	encode      Encoder
	extract     Extractor
	parse       Parser
	titleKey    string
	placeholder string
	logger      *zap.Logger
}

// New creates an extraction service with the default title key and placeholder.
func New(render Renderer, encode Encoder, extract Extractor, parse Parser) *Service {
	return &Service{
		render:      render,
		encode:      encode,
		extract:     extract,
		parse:       parse,
		titleKey:    domain.DefaultTitleKey,
		placeholder: domain.DefaultPlaceholder,
		logger:      zap.NewNop(),
	}
}

// WithTitleKey configures the designated title field.
func (s *Service) WithTitleKey(key string) *Service {
	if key != "" {
		s.titleKey = key
	}
	return s
}

// WithPlaceholder configures the title used when no title can be derived.
func (s *Service) WithPlaceholder(placeholder string) *Service {
	if placeholder != "" {
		s.placeholder = placeholder
	}
	return s
}

// WithLogger configures the fallback logger (the context logger wins).
func (s *Service) WithLogger(logger *zap.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Extract renders and encodes every page up front, then runs inference and parsing
// page by page. Any render, encode or inference failure fails the whole document:
// no partial result is returned.
func (s *Service) Extract(ctx context.Context, doc document.Document) (*domext.DocumentResult, error) {
	log := logpkg.FromContextOr(ctx, s.logger).With(zap.String("document", doc.Name()))
	start := time.Now()

	images, err := s.render.Render(ctx, doc.Location())
	if err != nil {
		return nil, fmt.Errorf("render %q: %w", doc.Name(), err)
	}

	encoded, err := s.encode.EncodeAll(images)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", doc.Name(), err)
	}

	log.Debug("Document prepared", zap.Int("pages", len(encoded)))

	result := domext.NewDocumentResult(doc.Name(), len(encoded))
	raw := 0
	for n, pg := range encoded {
		inf, err := s.extract.Extract(ctx, pg)
		if err != nil {
			return nil, fmt.Errorf("document %q page %d: %w", doc.Name(), n, err)
		}

		parsed := s.parse.Parse(inf.Text)
		metrics.PagesProcessedTotal.WithLabelValues(string(parsed.Kind())).Inc()
		if !parsed.IsStructured() {
			raw++
			log.Warn("Response is not a JSON object, keeping raw text",
				zap.Int("page", n),
				zap.String("request_id", inf.RequestID),
			)
		}

		if err := result.Add(domext.NewPageRecord(n, s.title(parsed)), parsed); err != nil {
			return nil, fmt.Errorf("document %q: %w", doc.Name(), err)
		}
	}

	log.Info("Document extracted",
		zap.Int("pages", result.Len()),
		zap.Int("raw_pages", raw),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// title returns the designated title field when it is present and textual,
// else the placeholder.
func (s *Service) title(r domext.Result) string {
	if t, ok := r.LookupString(s.titleKey); ok {
		return t
	}
	return s.placeholder
}
