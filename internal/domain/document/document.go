package document

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/pagex/internal/domain"
)

// Document is a discovered source document (immutable value object).
type Document struct {
	name     string
	location string
}

// New validates and creates a Document.
// Name and location are both required; location is cleaned but not checked for existence.
func New(name, location string) (Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Document{}, fmt.Errorf("document name is required: %w", domain.ErrInvalidDocument)
	}
	if strings.TrimSpace(location) == "" {
		return Document{}, fmt.Errorf("document %q location is required: %w", name, domain.ErrInvalidDocument)
	}
	return Document{name: name, location: filepath.Clean(location)}, nil
}

// MustNew creates a Document or panics. Intended for tests and literals.
func MustNew(name, location string) Document {
	d, err := New(name, location)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the human-readable document name.
func (d Document) Name() string { return d.name }

// Location returns the source path.
func (d Document) Location() string { return d.location }

func (d Document) String() string { return d.name + " (" + d.location + ")" }
