package extraction

import (
	"context"

	"github.com/kailas-cloud/pagex/internal/domain"
	domext "github.com/kailas-cloud/pagex/internal/domain/extraction"
	"github.com/kailas-cloud/pagex/internal/domain/page"
)

// Renderer turns a document location into ordered page images.
type Renderer interface {
	Render(ctx context.Context, location string) ([]page.Image, error)
}

// Encoder turns page images into transport payloads.
type Encoder interface {
	EncodeAll(pages []page.Image) ([]page.Encoded, error)
}

// Extractor sends one encoded page to the inference service.
type Extractor interface {
	Extract(ctx context.Context, p page.Encoded) (domain.InferenceResult, error)
}

// Parser interprets raw model text.
type Parser interface {
	Parse(text string) domext.Result
}
