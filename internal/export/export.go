// Package export writes batch results to json, xlsx or parquet.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/pagex/internal/domain/extraction"
)

// Format names an output encoding.
type Format string

// Supported formats.
const (
	FormatJSON    Format = "json"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
)

// ErrUnknownFormat is returned for a format with no writer.
var ErrUnknownFormat = errors.New("unknown output format")

// Writer encodes finished documents.
type Writer interface {
	Write(w io.Writer, docs []*extraction.DocumentResult) error
}

// Options configures the JSON writer; the tabular writers ignore it.
type Options struct {
	NameField  string
	PagesField string
	Indent     int
}

// ParseFormat validates a format name. Empty selects json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatXLSX, FormatParquet:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// New picks the writer for format.
func New(format string, opts Options) (Writer, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatXLSX:
		return NewXLSX(), nil
	case FormatParquet:
		return NewParquet(), nil
	default:
		return NewJSON(opts), nil
	}
}

// WriteFile encodes docs into path, creating parent directories.
func WriteFile(path string, w Writer, docs []*extraction.DocumentResult) (err error) {
	path = filepath.Clean(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	if err := w.Write(f, docs); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
