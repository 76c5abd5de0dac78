package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/pagex/internal/domain/extraction"
)

// Default JSON field names and indent.
const (
	DefaultNameField  = "university"
	DefaultPagesField = "factbookData"
	DefaultIndent     = 4
)

// JSON writes an array of {name, pages} objects.
type JSON struct {
	nameField  string
	pagesField string
	indent     int
}

// NewJSON creates a JSON writer; zero options take the defaults.
func NewJSON(opts Options) *JSON {
	j := &JSON{nameField: opts.NameField, pagesField: opts.PagesField, indent: opts.Indent}
	if j.nameField == "" {
		j.nameField = DefaultNameField
	}
	if j.pagesField == "" {
		j.pagesField = DefaultPagesField
	}
	if j.indent <= 0 {
		j.indent = DefaultIndent
	}
	return j
}

func (j *JSON) Write(w io.Writer, docs []*extraction.DocumentResult) error {
	items := make([]documentJSON, len(docs))
	for i, d := range docs {
		items[i] = documentJSON{j: j, doc: d}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", strings.Repeat(" ", j.indent))
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// documentJSON keeps the name field ahead of the pages field.
type documentJSON struct {
	j   *JSON
	doc *extraction.DocumentResult
}

func (d documentJSON) MarshalJSON() ([]byte, error) {
	return extraction.MarshalObject([]string{d.j.nameField, d.j.pagesField}, func(k string) any {
		if k == d.j.nameField {
			return d.doc.Name()
		}
		return d.doc
	})
}
