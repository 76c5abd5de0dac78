// Package extraction holds the per-page and per-document extraction results.
package extraction

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Kind tags which variant a Result carries.
type Kind string

// Result variants.
const (
	// KindStructured is a parsed field name → value mapping.
	KindStructured Kind = "structured"
	// KindRaw is the unmodified model text kept when parsing failed.
	KindRaw Kind = "raw"
)

// Result is the outcome of interpreting one page response.
// Exactly one variant is populated; callers branch on Kind.
type Result struct {
	kind   Kind
	keys   []string
	fields map[string]any
	raw    string
}

// NewStructured creates the structured variant with keys in sorted order.
func NewStructured(fields map[string]any) Result {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return NewOrdered(keys, fields)
}

// NewOrdered creates the structured variant preserving the given key order.
// Keys absent from fields are dropped, fields absent from keys are appended sorted.
func NewOrdered(keys []string, fields map[string]any) Result {
	cloned := make(map[string]any, len(fields))
	ordered := make([]string, 0, len(fields))
	for _, k := range keys {
		v, ok := fields[k]
		if !ok {
			continue
		}
		if _, dup := cloned[k]; dup {
			continue
		}
		cloned[k] = v
		ordered = append(ordered, k)
	}
	var rest []string
	for k := range fields {
		if _, ok := cloned[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		cloned[k] = fields[k]
		ordered = append(ordered, k)
	}
	return Result{kind: KindStructured, keys: ordered, fields: cloned}
}

// NewRaw creates the raw fallback variant holding text unmodified.
func NewRaw(text string) Result {
	return Result{kind: KindRaw, raw: text}
}

// Kind returns the variant tag. The zero Result is raw.
func (r Result) Kind() Kind {
	if r.kind == "" {
		return KindRaw
	}
	return r.kind
}

// IsStructured reports whether the structured variant is populated.
func (r Result) IsStructured() bool { return r.kind == KindStructured }

// Fields returns a copy of the structured mapping. ok is false for the raw variant.
func (r Result) Fields() (map[string]any, bool) {
	if !r.IsStructured() {
		return nil, false
	}
	out := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out, true
}

// Keys returns structured field names in order. Nil for the raw variant.
func (r Result) Keys() []string {
	if !r.IsStructured() {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Raw returns the fallback text. ok is false for the structured variant.
func (r Result) Raw() (string, bool) {
	if r.IsStructured() {
		return "", false
	}
	return r.raw, true
}

// Lookup returns a structured field value. present is false when the field
// is missing or the result is the raw variant.
func (r Result) Lookup(name string) (value any, present bool) {
	if !r.IsStructured() {
		return nil, false
	}
	v, ok := r.fields[name]
	return v, ok
}

// LookupString returns a structured field only when its value is text.
func (r Result) LookupString(name string) (string, bool) {
	v, ok := r.Lookup(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// MarshalJSON writes the structured variant as an ordered object and the raw variant as a string.
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.IsStructured() {
		return MarshalValue(r.raw)
	}
	return MarshalObject(r.keys, func(k string) any { return r.fields[k] })
}

// MarshalObject writes an ordered JSON object without HTML escaping.
// value is called once per key, in order.
func MarshalObject(keys []string, value func(string) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := MarshalValue(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := MarshalValue(value(k))
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalValue encodes v as compact JSON, keeping <, >, & and non-ASCII text verbatim.
func MarshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
