// Package parse interprets raw model text as structured page data.
package parse

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"unicode"

	"github.com/kailas-cloud/pagex/internal/domain/extraction"
)

// Parser maps raw model text to an extraction.Result. It never fails:
// text that is not a single JSON object becomes the raw variant unchanged.
type Parser struct {
	stripFences bool
}

// New creates a strict parser.
func New() *Parser {
	return &Parser{}
}

// WithCodeFences enables unwrapping of ```json fenced responses before decoding.
func (p *Parser) WithCodeFences(enabled bool) *Parser {
	p.stripFences = enabled
	return p
}

// Parse returns the structured variant for a top-level JSON object, else the raw variant
// holding text byte-for-byte.
func (p *Parser) Parse(text string) extraction.Result {
	candidate := text
	if p.stripFences {
		candidate = unfence(candidate)
	}

	keys, fields, err := decodeObject(candidate)
	if err != nil {
		return extraction.NewRaw(text)
	}
	return extraction.NewOrdered(keys, fields)
}

var errNotObject = errors.New("not a JSON object")

// decodeObject decodes exactly one JSON object, recording top-level key order.
// Numbers keep their lexical form. Trailing non-whitespace is rejected.
func decodeObject(text string) ([]string, map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errNotObject
	}

	var keys []string
	fields := make(map[string]any)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, errNotObject
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}
		if _, seen := fields[key]; !seen {
			keys = append(keys, key)
		}
		fields[key] = value
	}

	if _, err := dec.Token(); err != nil { // closing '}'
		return nil, nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, errNotObject
	}
	return keys, fields, nil
}

// unfence strips a single surrounding markdown code fence (``` or ```json).
func unfence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return text
	}
	inner := trimmed[3 : len(trimmed)-3]
	// drop the info string ("json", "JSON", ...) up to the first newline
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		if info := strings.TrimSpace(inner[:nl]); info == "" || isInfoString(info) {
			inner = inner[nl+1:]
		}
	}
	return strings.TrimSpace(inner)
}

func isInfoString(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_'
	}) < 0
}
