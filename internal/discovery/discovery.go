// Package discovery turns an input directory into an ordered list of documents.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/pagex/internal/domain/document"
	"github.com/kailas-cloud/pagex/internal/render"
)

// DefaultSkipNames are file names never treated as documents.
var DefaultSkipNames = []string{".DS_Store", "Thumbs.db"}

// ErrNoDocuments is returned when a directory holds no PDF files.
var ErrNoDocuments = errors.New("no documents found")

// Walker collects PDF documents below a directory.
type Walker struct {
	skip map[string]struct{}
}

// New creates a Walker. Names in skip are ignored in addition to hidden files.
func New(skip ...string) *Walker {
	if len(skip) == 0 {
		skip = DefaultSkipNames
	}
	w := &Walker{skip: make(map[string]struct{}, len(skip))}
	for _, s := range skip {
		w.skip[s] = struct{}{}
	}
	return w
}

// Walk returns every PDF under dir in lexical path order.
func (w *Walker) Walk(dir string) ([]document.Document, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", dir, err)
	}

	var docs []document.Document
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.accept(name) {
			return nil
		}
		doc, err := document.New(DocumentName(name), path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", dir, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%q: %w", dir, ErrNoDocuments)
	}
	return docs, nil
}

func (w *Walker) accept(name string) bool {
	if _, skip := w.skip[name]; skip {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), render.Extension)
}

// DocumentName derives the display name from a file name: extension removed,
// cut at the first "-", spaces trimmed. "Tokyo Univ - Factbook.pdf" gives "Tokyo Univ".
// A file name starting with "-" falls back to the full stem.
func DocumentName(file string) string {
	stem := strings.TrimSuffix(file, filepath.Ext(file))
	name, _, _ := strings.Cut(stem, "-")
	name = strings.TrimSpace(name)
	if name == "" {
		return strings.TrimSpace(stem)
	}
	return name
}
