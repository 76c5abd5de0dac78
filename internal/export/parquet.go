package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/pagex/internal/domain/extraction"
)

// Parquet writes the flattened rows as a parquet file.
type Parquet struct{}

// NewParquet creates a parquet writer.
func NewParquet() *Parquet { return &Parquet{} }

func (p *Parquet) Write(w io.Writer, docs []*extraction.DocumentResult) error {
	rows, err := Flatten(docs)
	if err != nil {
		return fmt.Errorf("flatten: %w", err)
	}

	pw := parquet.NewGenericWriter[Row](w)
	if _, err := pw.Write(rows); err != nil {
		_ = pw.Close()
		return fmt.Errorf("parquet write: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("parquet close: %w", err)
	}
	return nil
}
