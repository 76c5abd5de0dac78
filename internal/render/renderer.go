package render

import (
	"context"
	"fmt"
	"time"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pagex/internal/domain"
	"github.com/kailas-cloud/pagex/internal/domain/page"
	"github.com/kailas-cloud/pagex/internal/metrics"
)

// DefaultDPI is the rasterisation resolution when none is configured.
const DefaultDPI = 150

// Config holds renderer settings.
type Config struct {
	DPI      float64
	Precheck bool // run pdfcpu structural validation before rasterising
	Logger   *zap.Logger
}

// Renderer rasterises PDF documents page by page with MuPDF.
type Renderer struct {
	dpi      float64
	precheck bool
	logger   *zap.Logger
}

// New creates a Renderer.
func New(cfg Config) *Renderer {
	dpi := cfg.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{dpi: dpi, precheck: cfg.Precheck, logger: logger}
}

// Render returns one image per page in document order.
// Any failure yields domain.ErrDocumentUnreadable and no pages.
func (r *Renderer) Render(ctx context.Context, location string) ([]page.Image, error) {
	if err := ValidatePath(location); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDocumentUnreadable, err)
	}

	expected := 0
	if r.precheck {
		n, err := precheck(location)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrDocumentUnreadable, location, err)
		}
		expected = n
	}

	start := time.Now()

	doc, err := fitz.New(location)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrDocumentUnreadable, location, err)
	}
	defer func() { _ = doc.Close() }()

	count := doc.NumPage()
	if count <= 0 {
		return nil, fmt.Errorf("%w: %s has no pages", domain.ErrDocumentUnreadable, location)
	}
	if expected > 0 && expected != count {
		r.logger.Warn("Page count mismatch",
			zap.String("location", location),
			zap.Int("pdfcpu", expected),
			zap.Int("mupdf", count),
		)
	}

	images := make([]page.Image, 0, count)
	for i := range count {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("render %s: %w", location, err)
		}
		img, err := doc.ImageDPI(i, r.dpi)
		if err != nil {
			return nil, fmt.Errorf("%w: %s page %d: %w", domain.ErrDocumentUnreadable, location, i, err)
		}
		images = append(images, page.NewImage(i, img))
	}

	duration := time.Since(start)
	metrics.RenderDuration.Observe(duration.Seconds())

	r.logger.Debug("Document rendered",
		zap.String("location", location),
		zap.Int("pages", count),
		zap.Float64("dpi", r.dpi),
		zap.Duration("duration", duration),
	)

	return images, nil
}
