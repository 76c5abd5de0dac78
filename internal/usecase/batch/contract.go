package batch

import (
	"context"

	"github.com/kailas-cloud/pagex/internal/domain/document"
	"github.com/kailas-cloud/pagex/internal/domain/extraction"
)

// DocumentExtractor turns one document into its page map.
type DocumentExtractor interface {
	Extract(ctx context.Context, doc document.Document) (*extraction.DocumentResult, error)
}

// Sink receives every finished document, in input order.
type Sink interface {
	Save(ctx context.Context, index int, doc *extraction.DocumentResult) error
}
